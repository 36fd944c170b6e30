package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-management-api/pkg/helpers"
)

const (
	EventRegistered     = "user.registered"
	EventLoggedIn       = "user.logged_in"
	EventLoginFailed    = "user.login_failed"
	EventLoggedOut      = "user.logged_out"
	EventCreated        = "user.created"
	EventUpdated        = "user.updated"
	EventDeleted        = "user.deleted"
	EventPictureChanged = "user.profile_picture_updated"
)

// AuditEvent is the message published for every security-relevant change.
type AuditEvent struct {
	Type    string    `json:"type"`
	ActorID string    `json:"actorId,omitempty"`
	UserID  string    `json:"userId,omitempty"`
	Email   string    `json:"email,omitempty"`
	At      time.Time `json:"at"`
}

// MessageType tags the published message with the event type.
func (e AuditEvent) MessageType() string { return e.Type }

const auditTimeout = 2 * time.Second

// audit publishes ev when an AuditPublisher is configured. Failures are logged
// and never fail the request.
func (s *Service) audit(ctx context.Context, ev AuditEvent) {
	if s.Audit == nil {
		return
	}
	ev.At = s.now()
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := s.Audit.PublishJSON(c, ev); err != nil {
		helpers.LogWarn(s.Logger, "audit publish failed", logrus.Fields{"type": ev.Type, "error": err.Error()})
	}
}
