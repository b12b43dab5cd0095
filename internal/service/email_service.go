package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/liquid"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
	"github.com/mysupertc/MySuperTC-sub001/pkg/mailer"
	"github.com/mysupertc/MySuperTC-sub001/pkg/metrics"
)

type EmailService struct {
	templates    domain.TemplateRepository
	transactions domain.TransactionRepository
	clients      domain.ClientRepository
	profiles     domain.ProfileService
	history      domain.EmailHistoryRepository
	mailer       mailer.Mailer
	renderer     *liquid.Renderer
	metrics      *metrics.Metrics
	logger       logger.Logger
	now          func() time.Time
}

// EmailServiceConfig groups the collaborators of EmailService
type EmailServiceConfig struct {
	Templates    domain.TemplateRepository
	Transactions domain.TransactionRepository
	Clients      domain.ClientRepository
	Profiles     domain.ProfileService
	History      domain.EmailHistoryRepository
	Mailer       mailer.Mailer
	Renderer     *liquid.Renderer
	// Metrics is optional
	Metrics *metrics.Metrics
	Logger  logger.Logger
}

func NewEmailService(cfg EmailServiceConfig) *EmailService {
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = liquid.NewRenderer()
	}
	return &EmailService{
		templates:    cfg.Templates,
		transactions: cfg.Transactions,
		clients:      cfg.Clients,
		profiles:     cfg.Profiles,
		history:      cfg.History,
		mailer:       cfg.Mailer,
		renderer:     renderer,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		now:          time.Now,
	}
}

func (s *EmailService) ListHistory(ctx context.Context, filter domain.EmailFilter) ([]*domain.EmailHistory, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}

	emails, err := s.history.List(ctx, filter)
	if err != nil {
		s.logger.Error(fmt.Sprintf("Failed to list email history: %v", err))
		return nil, fmt.Errorf("failed to list email history: %w", err)
	}
	if emails == nil {
		emails = []*domain.EmailHistory{}
	}

	return emails, nil
}

// Preview renders a template against the referenced transaction and client
func (s *EmailService) Preview(ctx context.Context, req *domain.PreviewEmailRequest) (*domain.EmailPreview, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tpl, err := s.templates.GetEmailTemplate(ctx, req.TemplateID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get email template: %w", err)
	}

	return s.render(ctx, tpl.Subject, tpl.Body, req.TransactionID, req.ClientID)
}

// Send renders (when a template is given), delivers and logs one email
func (s *EmailService) Send(ctx context.Context, req *domain.SendEmailRequest) (*domain.EmailHistory, error) {
	principal, err := domain.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	subject, body := req.Subject, req.Body
	var templateID *string
	if req.TemplateID != "" {
		tpl, err := s.templates.GetEmailTemplate(ctx, req.TemplateID)
		if err != nil {
			if domain.IsNotFound(err) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to get email template: %w", err)
		}
		if strings.TrimSpace(subject) == "" {
			subject = tpl.Subject
		}
		if strings.TrimSpace(body) == "" {
			body = tpl.Body
		}
		templateID = &tpl.ID
	}

	preview, err := s.render(ctx, subject, body, req.TransactionID, req.ClientID)
	if err != nil {
		return nil, err
	}

	fromName := principal.FullName
	if profile, err := s.profiles.GetProfile(ctx); err == nil && profile.FullName != "" {
		fromName = profile.FullName
	}

	err = s.mailer.Send(ctx, &mailer.Message{
		To:       req.To,
		Cc:       req.Cc,
		ReplyTo:  principal.Email,
		FromName: fromName,
		Subject:  preview.Subject,
		Text:     preview.Body,
	})
	if s.metrics != nil {
		s.metrics.EmailSent(err == nil)
	}
	if err != nil {
		s.logger.WithField("user_id", principal.ID).Error(fmt.Sprintf("Failed to send email: %v", err))
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	now := s.now().UTC()
	record := &domain.EmailHistory{
		UserID:        principal.ID,
		TransactionID: optionalID(req.TransactionID),
		ClientID:      optionalID(req.ClientID),
		TemplateID:    templateID,
		Direction:     domain.EmailDirectionSent,
		FromAddress:   principal.Email,
		ToAddresses:   req.To,
		CcAddresses:   req.Cc,
		Subject:       preview.Subject,
		Body:          preview.Body,
		SentAt:        now,
		CreatedAt:     now,
	}

	saved, err := s.history.Create(ctx, record)
	if err != nil {
		// a delivered email is reported as sent even when the log write fails
		s.logger.WithField("user_id", principal.ID).Error(fmt.Sprintf("Failed to record sent email: %v", err))
		return record, nil
	}

	return saved, nil
}

func (s *EmailService) render(ctx context.Context, subject, body, transactionID, clientID string) (*domain.EmailPreview, error) {
	data, err := s.bindings(ctx, transactionID, clientID)
	if err != nil {
		return nil, err
	}

	renderedSubject, err := s.renderer.Render(ctx, subject, data)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid subject template: %v", err))
	}
	renderedBody, err := s.renderer.Render(ctx, body, data)
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid body template: %v", err))
	}

	return &domain.EmailPreview{
		Subject: strings.TrimSpace(renderedSubject),
		Body:    renderedBody,
	}, nil
}

// bindings exposes transaction, client, agent and today to templates
func (s *EmailService) bindings(ctx context.Context, transactionID, clientID string) (map[string]interface{}, error) {
	data := map[string]interface{}{
		"today": domain.DateOf(s.now()).String(),
	}

	if transactionID != "" {
		transaction, err := s.transactions.Get(ctx, transactionID)
		if err != nil {
			return nil, err
		}
		if data["transaction"], err = liquid.Bindings(transaction); err != nil {
			return nil, err
		}
		if clientID == "" && transaction.ClientID != nil {
			clientID = *transaction.ClientID
		}
	}

	if clientID != "" {
		client, err := s.clients.Get(ctx, clientID)
		if err != nil {
			return nil, err
		}
		if data["client"], err = liquid.Bindings(client); err != nil {
			return nil, err
		}
	}

	profile, err := s.profiles.GetProfile(ctx)
	if err != nil {
		s.logger.Warn(fmt.Sprintf("Rendering without agent profile: %v", err))
	} else if data["agent"], err = liquid.Bindings(profile); err != nil {
		return nil, err
	}

	return data, nil
}

func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
