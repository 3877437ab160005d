// ABOUTME: Principal context for passing the current session into operations
// ABOUTME: Provides WithPrincipal/FromContext plus role guards used by every service

package auth

import (
	"context"

	"github.com/2389/schoolbook/internal/records"
)

// principalContextKey is the key type for storing a Principal in context.Context.
type principalContextKey struct{}

// WithPrincipal returns a new context with the principal attached.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// FromContext retrieves the Principal from the context, returning nil if not present.
func FromContext(ctx context.Context) *Principal {
	val := ctx.Value(principalContextKey{})
	if val == nil {
		return nil
	}
	p, ok := val.(*Principal)
	if !ok {
		return nil
	}
	return p
}

// MustFromContext retrieves the Principal from the context, panicking if not present.
func MustFromContext(ctx context.Context) *Principal {
	p := FromContext(ctx)
	if p == nil {
		panic("auth: Principal not found in context")
	}
	return p
}

// RequireStaff returns the staff teacher in ctx.
func RequireStaff(ctx context.Context) (*records.Teacher, error) {
	p := FromContext(ctx)
	if p == nil {
		return nil, ErrUnauthenticated
	}
	if !p.IsStaff() {
		return nil, ErrForbidden
	}
	return p.Teacher, nil
}

// RequireHeadmaster returns the headmaster in ctx.
func RequireHeadmaster(ctx context.Context) (*records.Teacher, error) {
	t, err := RequireStaff(ctx)
	if err != nil {
		return nil, err
	}
	if !t.IsHeadmaster {
		return nil, ErrForbidden
	}
	return t, nil
}

// RequireStudent returns the student in ctx.
func RequireStudent(ctx context.Context) (*records.Student, error) {
	p := FromContext(ctx)
	if p == nil {
		return nil, ErrUnauthenticated
	}
	if !p.IsStudent() {
		return nil, ErrForbidden
	}
	return p.Student, nil
}
