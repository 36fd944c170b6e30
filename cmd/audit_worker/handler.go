package main

import (
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-management-api/internal/application"
)

var errMissingType = errors.New("audit event without type")

// handle decodes one audit message and logs it. Malformed messages are
// reported so the caller can drop them instead of requeueing forever.
func handle(logger *logrus.Logger, body []byte) error {
	var ev application.AuditEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return err
	}
	if ev.Type == "" {
		return errMissingType
	}

	fields := logrus.Fields{
		"type": ev.Type,
		"at":   ev.At,
	}
	if ev.ActorID != "" {
		fields["actor_id"] = ev.ActorID
	}
	if ev.UserID != "" {
		fields["user_id"] = ev.UserID
	}
	if ev.Email != "" {
		fields["email"] = ev.Email
	}

	entry := logger.WithFields(fields)
	if ev.Type == application.EventLoginFailed || ev.Type == application.EventDeleted {
		entry.Warn("audit")
		return nil
	}
	entry.Info("audit")
	return nil
}
