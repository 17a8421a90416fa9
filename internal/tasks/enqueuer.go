package tasks

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TaskClient is the part of *asynq.Client used to enqueue tasks
type TaskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer schedules e-mail tasks. Failures are logged and never returned,
// a request must not fail because mail could not be queued.
type Enqueuer struct {
	client TaskClient
	logger *zap.Logger
}

// NewEnqueuer creates a new enqueuer
func NewEnqueuer(client TaskClient, logger *zap.Logger) *Enqueuer {
	return &Enqueuer{
		client: client,
		logger: logger,
	}
}

func (e *Enqueuer) enqueue(ctx context.Context, taskType string, payload EmailPayload) {
	task, err := NewEmailTask(taskType, payload)
	if err != nil {
		e.logger.Error("failed to build task", zap.String("type", taskType), zap.Error(err))
		return
	}

	info, err := e.client.EnqueueContext(ctx, task)
	if err != nil {
		e.logger.Error("failed to enqueue task", zap.String("type", taskType), zap.Error(err))
		return
	}

	e.logger.Debug("task enqueued", zap.String("type", taskType), zap.String("task_id", info.ID))
}

// SendWelcome queues the welcome e-mail of a new account
func (e *Enqueuer) SendWelcome(ctx context.Context, to, name string) {
	e.enqueue(ctx, TypeWelcomeEmail, EmailPayload{To: to, Name: name})
}

// SendPasswordReset queues an e-mail with the reset link
func (e *Enqueuer) SendPasswordReset(ctx context.Context, to, name, link string) {
	e.enqueue(ctx, TypePasswordResetEmail, EmailPayload{To: to, Name: name, Link: link})
}

// SendPasswordResetConfirmation queues the confirmation of a completed reset
func (e *Enqueuer) SendPasswordResetConfirmation(ctx context.Context, to, name string) {
	e.enqueue(ctx, TypePasswordResetConfirmationEmail, EmailPayload{To: to, Name: name})
}

// SendEnrollment queues the enrollment confirmation
func (e *Enqueuer) SendEnrollment(ctx context.Context, to, name, courseTitle string) {
	e.enqueue(ctx, TypeEnrollmentEmail, EmailPayload{To: to, Name: name, CourseTitle: courseTitle})
}
