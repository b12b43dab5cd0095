package service

import (
	"context"
	"fmt"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

type TransactionService struct {
	repo      domain.TransactionRepository
	checklist domain.ChecklistService
	logger    logger.Logger
}

func NewTransactionService(repo domain.TransactionRepository, checklist domain.ChecklistService, logger logger.Logger) *TransactionService {
	return &TransactionService{
		repo:      repo,
		checklist: checklist,
		logger:    logger,
	}
}

func (s *TransactionService) ListTransactions(ctx context.Context, filter domain.TransactionFilter) (*domain.TransactionListResponse, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}

	transactions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error(fmt.Sprintf("Failed to list transactions: %v", err))
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}

	return &domain.TransactionListResponse{
		Transactions: transactions,
		TotalCount:   total,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}, nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}

	transaction, err := s.repo.Get(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		s.logger.WithField("transaction_id", id).Error(fmt.Sprintf("Failed to get transaction: %v", err))
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return transaction, nil
}

// CreateTransaction stores a new transaction and seeds its disclosure and
// task lists. A seeding failure leaves the transaction in place.
func (s *TransactionService) CreateTransaction(ctx context.Context, req *domain.CreateTransactionRequest) (*domain.Transaction, error) {
	principal, err := domain.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	transaction, err := req.Validate()
	if err != nil {
		return nil, err
	}
	transaction.UserID = principal.ID

	created, err := s.repo.Create(ctx, transaction)
	if err != nil {
		s.logger.WithField("user_id", principal.ID).Error(fmt.Sprintf("Failed to create transaction: %v", err))
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if s.checklist != nil {
		seeded, err := s.checklist.ApplyTemplates(ctx, created)
		if err != nil {
			s.logger.WithField("transaction_id", created.ID).Warn(fmt.Sprintf("Failed to seed transaction items: %v", err))
		} else {
			s.logger.WithFields(map[string]interface{}{
				"transaction_id": created.ID,
				"items":          seeded,
			}).Debug("Seeded transaction items")
		}
	}

	return created, nil
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, req *domain.UpdateTransactionRequest) (*domain.Transaction, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}

	patch, err := req.Validate()
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, req.ID, patch)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		s.logger.WithField("transaction_id", req.ID).Error(fmt.Sprintf("Failed to update transaction: %v", err))
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return updated, nil
}

func (s *TransactionService) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return err
	}
	if id == "" {
		return domain.NewValidationError("id is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		s.logger.WithField("transaction_id", id).Error(fmt.Sprintf("Failed to delete transaction: %v", err))
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	return nil
}
