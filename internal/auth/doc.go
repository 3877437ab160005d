// Package auth provides identity and session handling for schoolbook.
//
// # Flow
//
// A fresh store has no headmaster, so the only available operation is
// Setup, which records the school identity and the headmaster in one
// atomic write and signs the headmaster in.
//
// Afterwards every sign-in starts with discovery:
//
//	gate, err := svc.Discover(ctx, "042017")
//	p, err := gate.Login(ctx, auth.Credentials{Role: auth.RoleStaff, Identifier: email, Secret: pin})
//
// The Gate is the authentication stage. It can only be obtained from a
// successful Discover, and offers Login and RegisterStaff.
//
// # Principals
//
// A Principal is a tagged variant over a staff Teacher and a Student.
// Staff log in with email (case-insensitive) and pin; students with roll
// number and password. A staff login that matches a PENDING teacher fails
// with ErrPendingApproval until the headmaster approves it.
//
// The current principal is persisted under the session key and survives
// restarts until Logout. Operations receive it through the context:
//
//	ctx = auth.WithPrincipal(ctx, p)
//	teacher, err := auth.RequireStaff(ctx)
package auth
