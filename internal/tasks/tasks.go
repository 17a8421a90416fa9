// Package tasks defines the background jobs of the platform and their handlers
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeWelcomeEmail                   = "email:welcome"
	TypePasswordResetEmail             = "email:password_reset"
	TypePasswordResetConfirmationEmail = "email:password_reset_confirmation"
	TypeEnrollmentEmail                = "email:enrollment"
	QueueDefault                       = "default"
	MaxRetry                           = 5
)

// EmailPayload is the JSON payload of every e-mail task
type EmailPayload struct {
	To          string `json:"to"`
	Name        string `json:"name"`
	Link        string `json:"link,omitempty"`
	CourseTitle string `json:"courseTitle,omitempty"`
}

// NewEmailTask builds an e-mail task of the given type
func NewEmailTask(taskType string, payload EmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(taskType, data, asynq.MaxRetry(MaxRetry), asynq.Queue(QueueDefault)), nil
}

// ParseEmailPayload decodes the payload of an e-mail task
func ParseEmailPayload(t *asynq.Task) (*EmailPayload, error) {
	var payload EmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}
	if payload.To == "" {
		return nil, fmt.Errorf("recipient is required")
	}
	return &payload, nil
}
