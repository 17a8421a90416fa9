package tasks

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// Sender delivers a rendered e-mail
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through an SMTP server
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send sends an HTML e-mail using gopkg.in/mail.v2
func (s *SMTPSender) Send(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := mail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

type emailTemplate struct {
	subject string
	body    *template.Template
}

var emailTemplates = map[string]emailTemplate{
	TypeWelcomeEmail: {
		subject: "Welcome to MentorNest",
		body: template.Must(template.New("welcome").Parse(
			`<p>Hi {{.Name}},</p><p>Your MentorNest account is ready. Browse the catalog and start learning.</p>`)),
	},
	TypePasswordResetEmail: {
		subject: "Reset your MentorNest password",
		body: template.Must(template.New("reset").Parse(
			`<p>Hi {{.Name}},</p><p>Use the link below to choose a new password. It expires soon.</p>` +
				`<p><a href="{{.Link}}">Reset password</a></p><p>If you did not ask for this, ignore this e-mail.</p>`)),
	},
	TypePasswordResetConfirmationEmail: {
		subject: "Your MentorNest password was changed",
		body: template.Must(template.New("reset_confirmation").Parse(
			`<p>Hi {{.Name}},</p><p>Your password was changed and every session was signed out.</p>`)),
	},
	TypeEnrollmentEmail: {
		subject: "You are enrolled",
		body: template.Must(template.New("enrollment").Parse(
			`<p>Hi {{.Name}},</p><p>You are now enrolled in <strong>{{.CourseTitle}}</strong>. Happy learning!</p>`)),
	},
}

// RenderEmail returns subject and HTML body of an e-mail task
func RenderEmail(taskType string, payload *EmailPayload) (string, string, error) {
	tmpl, ok := emailTemplates[taskType]
	if !ok {
		return "", "", fmt.Errorf("unsupported task type: %s", taskType)
	}

	var body bytes.Buffer
	if err := tmpl.body.Execute(&body, payload); err != nil {
		return "", "", fmt.Errorf("failed to render email: %w", err)
	}

	return tmpl.subject, body.String(), nil
}

// EmailHandler processes e-mail tasks
type EmailHandler struct {
	sender Sender
	logger *zap.Logger
}

// NewEmailHandler creates a new e-mail task handler
func NewEmailHandler(sender Sender, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{
		sender: sender,
		logger: logger,
	}
}

// ProcessTask renders and sends the e-mail of a task.
// Malformed payloads are not retried.
func (h *EmailHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := ParseEmailPayload(t)
	if err != nil {
		h.logger.Error("dropping email task", zap.String("type", t.Type()), zap.Error(err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	subject, body, err := RenderEmail(t.Type(), payload)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := h.sender.Send(payload.To, subject, body); err != nil {
		h.logger.Warn("failed to send email", zap.String("type", t.Type()), zap.Error(err))
		return err
	}

	h.logger.Info("email sent", zap.String("type", t.Type()), zap.String("to", payload.To))
	return nil
}

// RegisterHandlers registers the e-mail handler for every e-mail task type
func (h *EmailHandler) RegisterHandlers(mux *asynq.ServeMux) {
	for taskType := range emailTemplates {
		mux.Handle(taskType, h)
	}
}
