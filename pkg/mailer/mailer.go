package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

//go:generate mockgen -destination=../mocks/mock_mailer.go -package=pkgmocks github.com/mysupertc/MySuperTC-sub001/pkg/mailer Mailer

// Mailer is the interface for sending emails
type Mailer interface {
	Send(ctx context.Context, message *Message) error
}

// Message is one outgoing email. HTML is the primary body; Text, when set,
// is attached as the plain-text alternative.
type Message struct {
	To       []string
	Cc       []string
	ReplyTo  string
	FromName string
	Subject  string
	HTML     string
	Text     string
}

// Validate checks the message has at least one recipient and some content
func (m *Message) Validate() error {
	if len(m.To) == 0 {
		return errors.New("message has no recipients")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("message has no subject")
	}
	if m.HTML == "" && m.Text == "" {
		return errors.New("message has no body")
	}
	return nil
}

// Config holds the configuration for the mailer
type Config struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// SMTPMailer implements the Mailer interface using SMTP
type SMTPMailer struct {
	config   *Config
	logger   logger.Logger
	testMode bool
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(config *Config, log logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		logger: log,
	}
}

// NewTestSMTPMailer creates a new SMTP mailer in test mode (won't connect to SMTP server)
func NewTestSMTPMailer(config *Config, log logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		config:   config,
		logger:   log,
		testMode: true,
	}
}

// Send builds the message and delivers it over SMTP
func (m *SMTPMailer) Send(ctx context.Context, message *Message) error {
	msg, err := m.buildMsg(message)
	if err != nil {
		return err
	}

	client, err := m.createSMTPClient()
	if err != nil {
		return err
	}

	if client == nil {
		m.logger.WithFields(map[string]interface{}{
			"to":      strings.Join(message.To, ","),
			"subject": message.Subject,
		}).Info("SMTP test mode, email not sent")
		return nil
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func (m *SMTPMailer) buildMsg(message *Message) (*mail.Msg, error) {
	if err := message.Validate(); err != nil {
		return nil, err
	}

	msg := mail.NewMsg(mail.WithNoDefaultUserAgent())

	fromName := m.config.FromName
	if message.FromName != "" {
		fromName = message.FromName
	}
	if err := msg.FromFormat(fromName, m.config.FromEmail); err != nil {
		return nil, fmt.Errorf("failed to set email from address: %w", err)
	}
	if err := msg.To(message.To...); err != nil {
		return nil, fmt.Errorf("failed to set email recipient: %w", err)
	}
	if len(message.Cc) > 0 {
		if err := msg.Cc(message.Cc...); err != nil {
			return nil, fmt.Errorf("failed to set email cc: %w", err)
		}
	}
	if message.ReplyTo != "" {
		if err := msg.ReplyTo(message.ReplyTo); err != nil {
			return nil, fmt.Errorf("failed to set email reply-to: %w", err)
		}
	}

	msg.Subject(message.Subject)

	switch {
	case message.HTML != "":
		msg.SetBodyString(mail.TypeTextHTML, message.HTML)
		if message.Text != "" {
			msg.AddAlternativeString(mail.TypeTextPlain, message.Text)
		}
	default:
		msg.SetBodyString(mail.TypeTextPlain, message.Text)
	}

	return msg, nil
}

// createSMTPClient creates and configures a new SMTP client
func (m *SMTPMailer) createSMTPClient() (*mail.Client, error) {
	if m.testMode {
		return nil, nil
	}

	clientOptions := []mail.Option{
		mail.WithPort(m.config.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}

	// unauthenticated relays are allowed
	if m.config.SMTPUsername != "" && m.config.SMTPPassword != "" {
		clientOptions = append(clientOptions,
			mail.WithUsername(m.config.SMTPUsername),
			mail.WithPassword(m.config.SMTPPassword),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
		)
	}

	client, err := mail.NewClient(m.config.SMTPHost, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return client, nil
}

// ConsoleMailer is a development implementation that just logs emails
type ConsoleMailer struct {
	logger logger.Logger
}

// NewConsoleMailer creates a new console mailer for development
func NewConsoleMailer(log logger.Logger) *ConsoleMailer {
	return &ConsoleMailer{logger: log}
}

// Send logs the message instead of delivering it
func (m *ConsoleMailer) Send(_ context.Context, message *Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	body := message.Text
	if body == "" {
		body = message.HTML
	}
	m.logger.WithFields(map[string]interface{}{
		"to":      strings.Join(message.To, ","),
		"cc":      strings.Join(message.Cc, ","),
		"subject": message.Subject,
		"body":    body,
	}).Info("Console mailer: email not sent")
	return nil
}
