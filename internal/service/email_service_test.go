package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/domain/mocks"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
	"github.com/mysupertc/MySuperTC-sub001/pkg/mailer"
	"github.com/mysupertc/MySuperTC-sub001/pkg/metrics"
	pkgmocks "github.com/mysupertc/MySuperTC-sub001/pkg/mocks"
)

type emailServiceMocks struct {
	templates    *mocks.MockTemplateRepository
	transactions *mocks.MockTransactionRepository
	clients      *mocks.MockClientRepository
	profiles     *mocks.MockProfileService
	history      *mocks.MockEmailHistoryRepository
	mailer       *pkgmocks.MockMailer
	metrics      *metrics.Metrics
}

func newEmailService(t *testing.T, ctrl *gomock.Controller) (*EmailService, *emailServiceMocks) {
	m := &emailServiceMocks{
		templates:    mocks.NewMockTemplateRepository(ctrl),
		transactions: mocks.NewMockTransactionRepository(ctrl),
		clients:      mocks.NewMockClientRepository(ctrl),
		profiles:     mocks.NewMockProfileService(ctrl),
		history:      mocks.NewMockEmailHistoryRepository(ctrl),
		mailer:       pkgmocks.NewMockMailer(ctrl),
		metrics:      metrics.New(prometheus.NewRegistry()),
	}
	service := NewEmailService(EmailServiceConfig{
		Templates:    m.templates,
		Transactions: m.transactions,
		Clients:      m.clients,
		Profiles:     m.profiles,
		History:      m.history,
		Mailer:       m.mailer,
		Metrics:      m.metrics,
		Logger:       logger.NewTestLogger(t),
	})
	service.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return service, m
}

var offerTemplate = &domain.EmailTemplate{
	ID:      "tpl-1",
	Name:    "Offer accepted",
	Subject: "Offer accepted: {{ transaction.property_address }}",
	Body:    "Hi {{ client.name }}, the offer at {{ transaction.sales_price | money }} was accepted on {{ today }}. {{ agent.full_name }}",
}

func TestEmailService_Preview(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, m := newEmailService(t, ctrl)
	ctx := principalContext()
	clientID := "client-1"
	price := 725000.0

	t.Run("binds transaction, its client and the agent", func(t *testing.T) {
		m.templates.EXPECT().GetEmailTemplate(ctx, "tpl-1").Return(offerTemplate, nil)
		m.transactions.EXPECT().Get(ctx, "tx-1").Return(&domain.Transaction{
			ID:              "tx-1",
			PropertyAddress: "9 Elm St",
			SalesPrice:      &price,
			ClientID:        &clientID,
		}, nil)
		m.clients.EXPECT().Get(ctx, "client-1").Return(&domain.Client{ID: "client-1", Name: "Jordan"}, nil)
		m.profiles.EXPECT().GetProfile(ctx).Return(&domain.Profile{ID: "user-1", FullName: "Alex Agent"}, nil)

		preview, err := service.Preview(ctx, &domain.PreviewEmailRequest{TemplateID: "tpl-1", TransactionID: "tx-1"})
		require.NoError(t, err)
		assert.Equal(t, "Offer accepted: 9 Elm St", preview.Subject)
		assert.Equal(t, "Hi Jordan, the offer at $725,000 was accepted on 2026-03-10. Alex Agent", preview.Body)
	})

	t.Run("missing profile still renders", func(t *testing.T) {
		m.templates.EXPECT().GetEmailTemplate(ctx, "tpl-1").Return(offerTemplate, nil)
		m.profiles.EXPECT().GetProfile(ctx).Return(nil, errors.New("db down"))

		preview, err := service.Preview(ctx, &domain.PreviewEmailRequest{TemplateID: "tpl-1"})
		require.NoError(t, err)
		assert.Equal(t, "Offer accepted:", preview.Subject)
	})

	t.Run("unknown template", func(t *testing.T) {
		m.templates.EXPECT().GetEmailTemplate(ctx, "nope").Return(nil, &domain.ErrNotFound{Entity: "email template", ID: "nope"})

		_, err := service.Preview(ctx, &domain.PreviewEmailRequest{TemplateID: "nope"})
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("broken template is a validation error", func(t *testing.T) {
		m.templates.EXPECT().GetEmailTemplate(ctx, "bad").Return(&domain.EmailTemplate{ID: "bad", Subject: "ok", Body: "{% if %}"}, nil)
		m.profiles.EXPECT().GetProfile(ctx).Return(&domain.Profile{}, nil)

		_, err := service.Preview(ctx, &domain.PreviewEmailRequest{TemplateID: "bad"})
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestEmailService_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, m := newEmailService(t, ctrl)
	ctx := principalContext()
	m.profiles.EXPECT().GetProfile(ctx).Return(&domain.Profile{ID: "user-1", FullName: "Alex A. Agent"}, nil).AnyTimes()

	req := func() *domain.SendEmailRequest {
		return &domain.SendEmailRequest{
			To:      []string{"jordan@example.com"},
			Cc:      []string{"escrow@example.com"},
			Subject: "Docs for {{ today }}",
			Body:    "Please sign.",
		}
	}

	t.Run("delivers and logs", func(t *testing.T) {
		m.mailer.EXPECT().Send(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, msg *mailer.Message) error {
				assert.Equal(t, []string{"jordan@example.com"}, msg.To)
				assert.Equal(t, "agent@example.com", msg.ReplyTo)
				assert.Equal(t, "Alex A. Agent", msg.FromName)
				assert.Equal(t, "Docs for 2026-03-10", msg.Subject)
				assert.Equal(t, "Please sign.", msg.Text)
				return nil
			})
		m.history.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, e *domain.EmailHistory) (*domain.EmailHistory, error) {
				assert.Equal(t, "user-1", e.UserID)
				assert.Equal(t, domain.EmailDirectionSent, e.Direction)
				assert.Equal(t, "agent@example.com", e.FromAddress)
				assert.Nil(t, e.TemplateID)
				e.ID = "mail-1"
				return e, nil
			})

		record, err := service.Send(ctx, req())
		require.NoError(t, err)
		assert.Equal(t, "mail-1", record.ID)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.EmailsSent.WithLabelValues("sent")))
	})

	t.Run("template fills the blanks", func(t *testing.T) {
		m.templates.EXPECT().GetEmailTemplate(ctx, "tpl-1").Return(offerTemplate, nil)
		m.mailer.EXPECT().Send(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, msg *mailer.Message) error {
				assert.Equal(t, "Offer accepted:", msg.Subject)
				return nil
			})
		m.history.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, e *domain.EmailHistory) (*domain.EmailHistory, error) {
				require.NotNil(t, e.TemplateID)
				assert.Equal(t, "tpl-1", *e.TemplateID)
				return e, nil
			})

		_, err := service.Send(ctx, &domain.SendEmailRequest{To: []string{"jordan@example.com"}, TemplateID: "tpl-1"})
		require.NoError(t, err)
	})

	t.Run("mailer failure", func(t *testing.T) {
		m.mailer.EXPECT().Send(ctx, gomock.Any()).Return(errors.New("smtp 554"))

		_, err := service.Send(ctx, req())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send email")
		assert.Equal(t, 1.0, testutil.ToFloat64(m.metrics.EmailsSent.WithLabelValues("failed")))
	})

	t.Run("history failure still reports the email as sent", func(t *testing.T) {
		m.mailer.EXPECT().Send(ctx, gomock.Any()).Return(nil)
		m.history.EXPECT().Create(ctx, gomock.Any()).Return(nil, errors.New("insert failed"))

		record, err := service.Send(ctx, req())
		require.NoError(t, err)
		assert.Equal(t, "Docs for 2026-03-10", record.Subject)
		assert.Empty(t, record.ID)
	})

	t.Run("invalid recipient", func(t *testing.T) {
		_, err := service.Send(ctx, &domain.SendEmailRequest{To: []string{"nobody"}, Subject: "x", Body: "y"})
		assert.True(t, domain.IsValidationError(err))
	})
}
