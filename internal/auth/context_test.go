// ABOUTME: Unit tests for principal context functions
// ABOUTME: Tests context propagation helpers and the role guards

package auth

import (
	"context"
	"testing"

	"github.com/2389/schoolbook/internal/records"
)

func TestFromContext_Present(t *testing.T) {
	p := StaffPrincipal(records.Teacher{ID: "t1", Name: "Teacher"})
	ctx := WithPrincipal(context.Background(), p)

	got := FromContext(ctx)
	if got != p {
		t.Fatalf("FromContext() = %v, want %v", got, p)
	}
}

func TestFromContext_Absent(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext() = %v, want nil", got)
	}
}

func TestFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), principalContextKey{}, "not a principal")
	if got := FromContext(ctx); got != nil {
		t.Errorf("FromContext() = %v, want nil", got)
	}
}

func TestMustFromContext_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustFromContext() did not panic")
		}
	}()
	MustFromContext(context.Background())
}

func TestRequireGuards(t *testing.T) {
	teacher := StaffPrincipal(records.Teacher{ID: "t1"})
	headmaster := StaffPrincipal(records.Teacher{ID: "hm1", IsHeadmaster: true})
	student := StudentPrincipal(records.Student{ID: "s1"})

	tests := []struct {
		name       string
		principal  *Principal
		staff      error
		headmaster error
		student    error
	}{
		{name: "anonymous", principal: nil, staff: ErrUnauthenticated, headmaster: ErrUnauthenticated, student: ErrUnauthenticated},
		{name: "teacher", principal: teacher, staff: nil, headmaster: ErrForbidden, student: ErrForbidden},
		{name: "headmaster", principal: headmaster, staff: nil, headmaster: nil, student: ErrForbidden},
		{name: "student", principal: student, staff: ErrForbidden, headmaster: ErrForbidden, student: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.principal != nil {
				ctx = WithPrincipal(ctx, tt.principal)
			}

			if _, err := RequireStaff(ctx); err != tt.staff {
				t.Errorf("RequireStaff() error = %v, want %v", err, tt.staff)
			}
			if _, err := RequireHeadmaster(ctx); err != tt.headmaster {
				t.Errorf("RequireHeadmaster() error = %v, want %v", err, tt.headmaster)
			}
			if _, err := RequireStudent(ctx); err != tt.student {
				t.Errorf("RequireStudent() error = %v, want %v", err, tt.student)
			}
		})
	}
}
