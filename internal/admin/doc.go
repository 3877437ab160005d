// Package admin provides the headmaster's management console.
//
// # Approval Workflow
//
// Staff who register themselves start PENDING and cannot sign in. The
// headmaster reviews them:
//
//   - Approve: PENDING -> APPROVED. The same credentials then log in.
//   - Reject: the registration is deleted outright.
//
// Approve, Reject and SaveTeacher on an unknown id do nothing. The
// headmaster record is protected from rejection.
//
// # Console
//
// Besides approvals the headmaster can create and edit teachers directly
// (saved as APPROVED), maintain the non-login staff directory, and edit the
// weekly timetable. The school profile and the timetable are readable by any
// signed-in principal; a student sees only their own section's timetable.
//
// # Usage
//
//	svc := admin.New(repos, logger)
//	ctx = auth.WithPrincipal(ctx, headmaster)
//	err := svc.Approve(ctx, teacherID)
package admin
