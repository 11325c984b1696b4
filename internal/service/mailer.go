package service

import (
	"bytes"
	"fmt"
	"html/template"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// EmailEvent selects the template and subject line for an outgoing mail.
type EmailEvent string

const (
	EmailSignUpOTP      EmailEvent = "SIGNUP_OTP"
	EmailSignInOTP      EmailEvent = "LOGIN_OTP"
	EmailForgotPassword EmailEvent = "FORGOT_PASSWORD"
)

var emailSubjects = map[EmailEvent]string{
	EmailSignUpOTP:      "Verify your account",
	EmailSignInOTP:      "Your login code",
	EmailForgotPassword: "Recover your password",
}

const otpBodyTemplate = `<html>
<body style="font-family: Arial, sans-serif; color: #333333;">
  <p>Hi {{.Name}},</p>
  <p>{{.Lead}}</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.OTP}}</p>
  <p>This code expires in {{.ExpiryMinutes}} minutes. If you did not request it, you can ignore this email.</p>
</body>
</html>`

var emailLeads = map[EmailEvent]string{
	EmailSignUpOTP:      "Use the verification code below to activate your account.",
	EmailSignInOTP:      "Use the one-time code below to log in.",
	EmailForgotPassword: "Use the code below to reset your password.",
}

// MailData carries the values rendered into an OTP email body.
type MailData struct {
	Name          string
	OTP           string
	Lead          string
	ExpiryMinutes int
}

// Mailer sends a single templated email. Implementations may fail; callers
// must treat failure as loggable, never as a request error.
type Mailer interface {
	Send(event EmailEvent, to string, data MailData) error
}

// SMTPConfig holds the mail transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	cfg  SMTPConfig
	tmpl *template.Template
}

// NewSMTPMailer creates a Mailer backed by an SMTP transport.
func NewSMTPMailer(cfg SMTPConfig) Mailer {
	return &smtpMailer{
		cfg:  cfg,
		tmpl: template.Must(template.New("otp").Parse(otpBodyTemplate)),
	}
}

func (m *smtpMailer) Send(event EmailEvent, to string, data MailData) error {
	subject, ok := emailSubjects[event]
	if !ok {
		return fmt.Errorf("unknown email event %q", event)
	}
	data.Lead = emailLeads[event]

	var body bytes.Buffer
	if err := m.tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send %s email: %w", event, err)
	}
	return nil
}

type mailJob struct {
	event EmailEvent
	to    string
	data  MailData
}

// MailDispatcher delivers mail on a background worker fed by a bounded
// queue. Enqueue never blocks the calling request: when the queue is full
// the job is dropped and logged. A lost OTP email is recovered by
// re-requesting an OTP, which invalidates the lost one.
type MailDispatcher struct {
	mailer Mailer
	logger *zap.Logger
	queue  chan mailJob
	done   chan struct{}
	once   sync.Once
}

// NewMailDispatcher creates and starts a dispatcher with the given queue
// capacity.
func NewMailDispatcher(mailer Mailer, logger *zap.Logger, queueSize int) *MailDispatcher {
	if queueSize <= 0 {
		queueSize = 64
	}
	d := &MailDispatcher{
		mailer: mailer,
		logger: logger,
		queue:  make(chan mailJob, queueSize),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *MailDispatcher) run() {
	defer close(d.done)
	for job := range d.queue {
		if err := d.mailer.Send(job.event, job.to, job.data); err != nil {
			d.logger.Error("email dispatch failed",
				zap.String("event", string(job.event)),
				zap.String("recipient", job.to),
				zap.Error(err))
		}
	}
}

// Enqueue schedules a mail for delivery and returns immediately.
func (d *MailDispatcher) Enqueue(event EmailEvent, to string, data MailData) {
	select {
	case d.queue <- mailJob{event: event, to: to, data: data}:
	default:
		d.logger.Warn("mail queue full, dropping email",
			zap.String("event", string(event)),
			zap.String("recipient", to))
	}
}

// Close stops the dispatcher after draining queued jobs.
func (d *MailDispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	<-d.done
}
