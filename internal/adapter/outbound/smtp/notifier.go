package smtp

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"mime"
	gosmtp "net/smtp"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/uniedit/invite-server/internal/model"
	"github.com/uniedit/invite-server/internal/port/outbound"
)

// Config holds SMTP configuration.
type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	FromAddress string
	FromName    string

	// Circuit breaker settings
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

type sendFunc func(addr string, a gosmtp.Auth, from string, to []string, msg []byte) error

// Notifier sends invitation emails over SMTP.
type Notifier struct {
	config  *Config
	send    sendFunc
	breaker *gobreaker.CircuitBreaker[any]
	logger  *zap.Logger
}

// NewNotifier creates a new SMTP invitation notifier.
func NewNotifier(config *Config, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := config.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	openTimeout := config.OpenTimeout
	if openTimeout == 0 {
		openTimeout = 30 * time.Second
	}

	n := &Notifier{
		config: config,
		send:   gosmtp.SendMail,
		logger: logger.Named("smtp"),
	}
	n.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			n.logger.Warn("smtp circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return n
}

// SendProjectInvitation emails an invitee who already has an account.
func (n *Notifier) SendProjectInvitation(ctx context.Context, job *model.NotificationJob) error {
	subject := fmt.Sprintf("%s invited you to %s", job.InviterName, job.TargetName)
	return n.deliver(ctx, job, subject, projectInvitationTemplate)
}

// SendSignupInvitation emails an invitee who has no account yet.
func (n *Notifier) SendSignupInvitation(ctx context.Context, job *model.NotificationJob) error {
	subject := fmt.Sprintf("%s invited you to join %s", job.InviterName, job.TargetName)
	return n.deliver(ctx, job, subject, signupInvitationTemplate)
}

func (n *Notifier) deliver(ctx context.Context, job *model.NotificationJob, subject string, tmpl *template.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, job); err != nil {
		return fmt.Errorf("render template: %w", err)
	}

	_, err := n.breaker.Execute(func() (any, error) {
		return nil, n.sendEmail(job.Email, subject, body.String())
	})
	if err != nil {
		n.logger.Error("failed to send invitation email",
			zap.String("invitation_id", job.InvitationID.String()),
			zap.String("kind", string(job.Kind)),
			zap.Error(err))
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("invitation email sent",
		zap.String("invitation_id", job.InvitationID.String()),
		zap.String("kind", string(job.Kind)))
	return nil
}

func (n *Notifier) sendEmail(to, subject, body string) error {
	from := n.config.FromAddress
	if n.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", n.config.FromName), n.config.FromAddress)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, mime.QEncoding.Encode("utf-8", subject), body)

	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)

	var auth gosmtp.Auth
	if n.config.User != "" && n.config.Password != "" {
		auth = gosmtp.PlainAuth("", n.config.User, n.config.Password, n.config.Host)
	}

	return n.send(addr, auth, n.config.FromAddress, []string{to}, []byte(msg))
}

// BreakerState reports the circuit breaker state.
func (n *Notifier) BreakerState() gobreaker.State {
	return n.breaker.State()
}

// LogNotifier logs invitations instead of sending them.
// Used when no SMTP host is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that only logs.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("notify-log")}
}

func (l *LogNotifier) SendProjectInvitation(ctx context.Context, job *model.NotificationJob) error {
	l.log(job)
	return nil
}

func (l *LogNotifier) SendSignupInvitation(ctx context.Context, job *model.NotificationJob) error {
	l.log(job)
	return nil
}

func (l *LogNotifier) log(job *model.NotificationJob) {
	l.logger.Info("invitation notification",
		zap.String("invitation_id", job.InvitationID.String()),
		zap.String("kind", string(job.Kind)))
}

var (
	_ outbound.InvitationNotifierPort = (*Notifier)(nil)
	_ outbound.InvitationNotifierPort = (*LogNotifier)(nil)
)
