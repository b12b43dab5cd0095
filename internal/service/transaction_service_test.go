package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/internal/domain/mocks"
	pkgmocks "github.com/mysupertc/MySuperTC-sub001/pkg/mocks"
)

var testPrincipal = &domain.Principal{
	ID:          "user-1",
	Email:       "agent@example.com",
	FullName:    "Alex Agent",
	AccessToken: "token",
}

func principalContext() context.Context {
	return domain.WithPrincipal(context.Background(), testPrincipal)
}

func newLenientLogger(ctrl *gomock.Controller) *pkgmocks.MockLogger {
	mockLogger := pkgmocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().WithField(gomock.Any(), gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().WithFields(gomock.Any()).Return(mockLogger).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()
	return mockLogger
}

func TestTransactionService_ListTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockTransactionRepository(ctrl)
	mockLogger := pkgmocks.NewMockLogger(ctrl)
	service := NewTransactionService(mockRepo, nil, mockLogger)

	ctx := principalContext()
	filter := domain.TransactionFilter{OrderBy: "created_at", Limit: 50, Count: true}

	t.Run("returns a page", func(t *testing.T) {
		total := int64(1)
		mockRepo.EXPECT().List(ctx, filter).Return([]*domain.Transaction{{ID: "tx-1"}}, &total, nil)

		resp, err := service.ListTransactions(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, resp.Transactions, 1)
		assert.Equal(t, int64(1), *resp.TotalCount)
		assert.Equal(t, 50, resp.Limit)
	})

	t.Run("empty result is an empty slice", func(t *testing.T) {
		mockRepo.EXPECT().List(ctx, filter).Return(nil, nil, nil)

		resp, err := service.ListTransactions(ctx, filter)
		require.NoError(t, err)
		assert.NotNil(t, resp.Transactions)
		assert.Empty(t, resp.Transactions)
	})

	t.Run("repository failure", func(t *testing.T) {
		mockRepo.EXPECT().List(ctx, filter).Return(nil, nil, errors.New("db error"))
		mockLogger.EXPECT().Error(gomock.Any())

		_, err := service.ListTransactions(ctx, filter)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list transactions")
	})

	t.Run("requires a principal", func(t *testing.T) {
		_, err := service.ListTransactions(context.Background(), filter)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestTransactionService_GetTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockTransactionRepository(ctrl)
	mockLogger := pkgmocks.NewMockLogger(ctrl)
	service := NewTransactionService(mockRepo, nil, mockLogger)
	ctx := principalContext()

	t.Run("found", func(t *testing.T) {
		mockRepo.EXPECT().Get(ctx, "tx-1").Return(&domain.Transaction{ID: "tx-1"}, nil)

		tx, err := service.GetTransaction(ctx, "tx-1")
		require.NoError(t, err)
		assert.Equal(t, "tx-1", tx.ID)
	})

	t.Run("not found passes through", func(t *testing.T) {
		notFound := &domain.ErrNotFound{Entity: "transaction", ID: "missing"}
		mockRepo.EXPECT().Get(ctx, "missing").Return(nil, notFound)

		_, err := service.GetTransaction(ctx, "missing")
		assert.Equal(t, notFound, err)
	})

	t.Run("repository failure is logged", func(t *testing.T) {
		mockRepo.EXPECT().Get(ctx, "tx-2").Return(nil, errors.New("boom"))
		mockLogger.EXPECT().WithField("transaction_id", "tx-2").Return(mockLogger)
		mockLogger.EXPECT().Error(gomock.Any())

		_, err := service.GetTransaction(ctx, "tx-2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get transaction")
	})
}

func TestTransactionService_CreateTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockTransactionRepository(ctrl)
	mockChecklist := mocks.NewMockChecklistService(ctrl)
	mockLogger := newLenientLogger(ctrl)
	service := NewTransactionService(mockRepo, mockChecklist, mockLogger)
	ctx := principalContext()

	t.Run("owner comes from the principal", func(t *testing.T) {
		req := &domain.CreateTransactionRequest{PropertyAddress: " 12 Oak Ave ", Type: "seller"}

		mockRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
				assert.Equal(t, "user-1", tx.UserID)
				assert.Equal(t, "12 Oak Ave", tx.PropertyAddress)
				assert.Equal(t, domain.DefaultTransactionStatus, tx.Status)
				assert.Equal(t, domain.TransactionTypeSeller, tx.Type)
				saved := *tx
				saved.ID = "tx-new"
				return &saved, nil
			})
		mockChecklist.EXPECT().ApplyTemplates(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, tx *domain.Transaction) (int, error) {
				assert.Equal(t, "tx-new", tx.ID)
				return 12, nil
			})

		tx, err := service.CreateTransaction(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "tx-new", tx.ID)
	})

	t.Run("seeding failure keeps the transaction", func(t *testing.T) {
		req := &domain.CreateTransactionRequest{PropertyAddress: "1 Main St"}

		mockRepo.EXPECT().Create(ctx, gomock.Any()).Return(&domain.Transaction{ID: "tx-2"}, nil)
		mockChecklist.EXPECT().ApplyTemplates(ctx, gomock.Any()).Return(3, errors.New("partial"))

		tx, err := service.CreateTransaction(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "tx-2", tx.ID)
	})

	t.Run("validation failure", func(t *testing.T) {
		_, err := service.CreateTransaction(ctx, &domain.CreateTransactionRequest{PropertyAddress: "  "})
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("repository failure", func(t *testing.T) {
		mockRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil, errors.New("insert failed"))

		_, err := service.CreateTransaction(ctx, &domain.CreateTransactionRequest{PropertyAddress: "1 Main St"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create transaction")
	})

	t.Run("requires a principal", func(t *testing.T) {
		_, err := service.CreateTransaction(context.Background(), &domain.CreateTransactionRequest{PropertyAddress: "1 Main St"})
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestTransactionService_UpdateTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockTransactionRepository(ctrl)
	service := NewTransactionService(mockRepo, nil, newLenientLogger(ctrl))
	ctx := principalContext()
	status := "under-contract"

	t.Run("patches the set fields", func(t *testing.T) {
		mockRepo.EXPECT().Update(ctx, "tx-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, patch domain.Patch) (*domain.Transaction, error) {
				assert.Equal(t, "under-contract", patch["status"])
				assert.IsType(t, time.Time{}, patch["updated_at"])
				assert.NotContains(t, patch, "user_id")
				return &domain.Transaction{ID: "tx-1", Status: domain.TransactionStatusUnderContract}, nil
			})

		tx, err := service.UpdateTransaction(ctx, &domain.UpdateTransactionRequest{ID: "tx-1", Status: &status})
		require.NoError(t, err)
		assert.Equal(t, domain.TransactionStatusUnderContract, tx.Status)
	})

	t.Run("empty update is rejected", func(t *testing.T) {
		_, err := service.UpdateTransaction(ctx, &domain.UpdateTransactionRequest{ID: "tx-1"})
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("not found passes through", func(t *testing.T) {
		mockRepo.EXPECT().Update(ctx, "gone", gomock.Any()).Return(nil, &domain.ErrNotFound{Entity: "transaction", ID: "gone"})

		_, err := service.UpdateTransaction(ctx, &domain.UpdateTransactionRequest{ID: "gone", Status: &status})
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestTransactionService_DeleteTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockTransactionRepository(ctrl)
	service := NewTransactionService(mockRepo, nil, newLenientLogger(ctrl))
	ctx := principalContext()

	t.Run("deletes", func(t *testing.T) {
		mockRepo.EXPECT().Delete(ctx, "tx-1").Return(nil)
		assert.NoError(t, service.DeleteTransaction(ctx, "tx-1"))
	})

	t.Run("missing id", func(t *testing.T) {
		err := service.DeleteTransaction(ctx, "")
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("repository failure", func(t *testing.T) {
		mockRepo.EXPECT().Delete(ctx, "tx-2").Return(errors.New("fk violation"))
		err := service.DeleteTransaction(ctx, "tx-2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete transaction")
	})
}
