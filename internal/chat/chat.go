// ABOUTME: Peer messaging between students of the same class section
// ABOUTME: Resolves who may talk to whom and keeps threads in send order

package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/schoolbook/internal/auth"
	"github.com/2389/schoolbook/internal/records"
)

// Service resolves messaging scope and stores messages.
type Service struct {
	repos  *records.Repositories
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a chat Service. A nil logger uses slog.Default().
func NewService(repos *records.Repositories, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repos:  repos,
		logger: logger.With("component", "chat"),
		now:    time.Now,
	}
}

// Classmates filters students down to those sharing the class and section
// of student, excluding student itself.
func Classmates(students []records.Student, student records.Student) []records.Student {
	out := []records.Student{}
	for _, s := range students {
		if s.ID != student.ID && s.SameClassAs(student) {
			out = append(out, s)
		}
	}
	return out
}

// ClassmatesOf returns the peers student may message.
func (s *Service) ClassmatesOf(ctx context.Context, student records.Student) ([]records.Student, error) {
	if auth.FromContext(ctx) == nil {
		return nil, auth.ErrUnauthenticated
	}
	students, err := s.repos.Students.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return Classmates(students, student), nil
}

// ThreadBetween returns the messages exchanged between a and b in either
// direction, in the order they were sent. A student may only read threads
// they take part in.
func (s *Service) ThreadBetween(ctx context.Context, a, b string) ([]records.ChatMessage, error) {
	p := auth.FromContext(ctx)
	if p == nil {
		return nil, auth.ErrUnauthenticated
	}
	if p.IsStudent() && p.ID() != a && p.ID() != b {
		return nil, auth.ErrForbidden
	}

	messages, err := s.repos.Chats.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []records.ChatMessage{}
	for _, m := range messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Send appends a message from the signed-in student to a classmate. Blank
// text or an empty receiver sends nothing and reports sent as false.
// Timestamps are Unix milliseconds and strictly increase across messages.
func (s *Service) Send(ctx context.Context, senderID, receiverID, text string) (msg *records.ChatMessage, sent bool, err error) {
	sender, err := auth.RequireStudent(ctx)
	if err != nil {
		return nil, false, err
	}
	if sender.ID != senderID {
		return nil, false, auth.ErrForbidden
	}
	if strings.TrimSpace(text) == "" || receiverID == "" {
		return nil, false, nil
	}

	students, err := s.repos.Students.GetAll(ctx)
	if err != nil {
		return nil, false, err
	}
	inScope := false
	for _, peer := range Classmates(students, *sender) {
		if peer.ID == receiverID {
			inScope = true
			break
		}
	}
	if !inScope {
		return nil, false, auth.ErrForbidden
	}

	m := records.ChatMessage{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
	}
	err = s.repos.Chats.Update(ctx, func(items []records.ChatMessage) ([]records.ChatMessage, error) {
		m.Timestamp = s.now().UnixMilli()
		if n := len(items); n > 0 && items[n-1].Timestamp >= m.Timestamp {
			m.Timestamp = items[n-1].Timestamp + 1
		}
		return append(items, m), nil
	})
	if err != nil {
		return nil, false, err
	}

	s.logger.Debug("message sent", "message_id", m.ID, "sender_id", senderID, "receiver_id", receiverID)
	return &m, true, nil
}
