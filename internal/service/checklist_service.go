package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

type ChecklistService struct {
	items     domain.ItemRepository
	templates domain.TemplateRepository
	logger    logger.Logger
	now       func() time.Time
}

func NewChecklistService(items domain.ItemRepository, templates domain.TemplateRepository, logger logger.Logger) *ChecklistService {
	return &ChecklistService{
		items:     items,
		templates: templates,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ChecklistService) ListItems(ctx context.Context, kind domain.ItemKind, transactionID string) ([]*domain.Item, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid kind: %q", kind))
	}
	if transactionID == "" {
		return nil, domain.NewValidationError("transaction_id is required")
	}

	items, err := s.items.List(ctx, kind, domain.ItemFilter{TransactionID: transactionID})
	if err != nil {
		s.logger.WithField("transaction_id", transactionID).Error(fmt.Sprintf("Failed to list %s items: %v", kind, err))
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	if items == nil {
		items = []*domain.Item{}
	}

	return items, nil
}

func (s *ChecklistService) CreateItem(ctx context.Context, req *domain.CreateItemRequest) (*domain.Item, error) {
	principal, err := domain.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	item, err := req.Validate()
	if err != nil {
		return nil, err
	}
	item.UserID = principal.ID

	created, err := s.items.Create(ctx, item.Kind, item)
	if err != nil {
		s.logger.WithField("transaction_id", item.TransactionID).Error(fmt.Sprintf("Failed to create %s item: %v", item.Kind, err))
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return created, nil
}

func (s *ChecklistService) UpdateItem(ctx context.Context, req *domain.UpdateItemRequest) (*domain.Item, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}

	patch, err := req.Validate()
	if err != nil {
		return nil, err
	}

	return s.update(ctx, req.Kind, req.ID, patch)
}

// ToggleItem flips the completion of one item
func (s *ChecklistService) ToggleItem(ctx context.Context, kind domain.ItemKind, id string) (*domain.Item, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	ref := domain.ItemRefRequest{Kind: kind, ID: id}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	item, err := s.items.Get(ctx, kind, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return s.update(ctx, kind, id, domain.CompletionPatch(!item.Completed, s.now().UTC()))
}

func (s *ChecklistService) update(ctx context.Context, kind domain.ItemKind, id string, patch domain.Patch) (*domain.Item, error) {
	updated, err := s.items.Update(ctx, kind, id, patch)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		s.logger.WithField("item_id", id).Error(fmt.Sprintf("Failed to update %s item: %v", kind, err))
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return updated, nil
}

func (s *ChecklistService) DeleteItem(ctx context.Context, kind domain.ItemKind, id string) error {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return err
	}
	ref := domain.ItemRefRequest{Kind: kind, ID: id}
	if err := ref.Validate(); err != nil {
		return err
	}

	if err := s.items.Delete(ctx, kind, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		s.logger.WithField("item_id", id).Error(fmt.Sprintf("Failed to delete %s item: %v", kind, err))
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return nil
}

// Progress counts the items of every kind for one transaction
func (s *ChecklistService) Progress(ctx context.Context, transactionID string) (*domain.ItemProgress, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	if transactionID == "" {
		return nil, domain.NewValidationError("transaction_id is required")
	}

	now := s.now()
	progress := &domain.ItemProgress{
		TransactionID: transactionID,
		ByKind:        make(map[domain.ItemKind]domain.KindProgress),
	}
	for _, kind := range domain.ItemKinds {
		items, err := s.items.List(ctx, kind, domain.ItemFilter{TransactionID: transactionID})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s items: %w", kind, err)
		}
		progress.ByKind[kind] = domain.KindProgress{}
		for _, item := range items {
			item.Kind = kind
			progress.Add(item, now)
		}
	}

	return progress, nil
}

// ApplyTemplates creates one disclosure item per disclosure template and one
// task item per task template. Task due dates are offset from the contract
// date, falling back to the listing date and then the creation day.
// Both catalogues are attempted; errors are joined.
func (s *ChecklistService) ApplyTemplates(ctx context.Context, transaction *domain.Transaction) (int, error) {
	principal, err := domain.RequirePrincipal(ctx)
	if err != nil {
		return 0, err
	}
	if transaction == nil || transaction.ID == "" {
		return 0, domain.NewValidationError("transaction is required")
	}

	now := s.now().UTC()
	var errs []error
	created := 0

	disclosures, err := s.templates.ListDisclosureTemplates(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to list disclosure templates: %w", err))
	} else if len(disclosures) > 0 {
		items := make([]*domain.Item, 0, len(disclosures))
		for _, tpl := range disclosures {
			items = append(items, &domain.Item{
				TransactionID: transaction.ID,
				UserID:        principal.ID,
				Kind:          domain.ItemKindDisclosure,
				Title:         tpl.DocumentName,
				Section:       tpl.Category,
				Notes:         tpl.Description,
				SortOrder:     tpl.SortOrder,
				CreatedAt:     now,
				UpdatedAt:     now,
			})
		}
		rows, err := s.items.CreateBatch(ctx, domain.ItemKindDisclosure, items)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to create disclosure items: %w", err))
		}
		created += len(rows)
	}

	tasks, err := s.templates.ListTaskTemplates(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to list task templates: %w", err))
	} else if len(tasks) > 0 {
		anchor := dueAnchor(transaction, now)
		items := make([]*domain.Item, 0, len(tasks))
		for _, tpl := range tasks {
			item := &domain.Item{
				TransactionID: transaction.ID,
				UserID:        principal.ID,
				Kind:          domain.ItemKindTask,
				Title:         tpl.Name,
				Section:       tpl.Section,
				Notes:         tpl.Description,
				SortOrder:     tpl.SortOrder,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if tpl.DueOffsetDays != nil {
				due := anchor.AddDays(*tpl.DueOffsetDays)
				item.DueDate = &due
			}
			items = append(items, item)
		}
		rows, err := s.items.CreateBatch(ctx, domain.ItemKindTask, items)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to create task items: %w", err))
		}
		created += len(rows)
	}

	return created, errors.Join(errs...)
}

func dueAnchor(transaction *domain.Transaction, now time.Time) domain.Date {
	switch {
	case transaction.ContractDate != nil && !transaction.ContractDate.IsZero():
		return *transaction.ContractDate
	case transaction.ListingDate != nil && !transaction.ListingDate.IsZero():
		return *transaction.ListingDate
	case !transaction.CreatedAt.IsZero():
		return domain.DateOf(transaction.CreatedAt)
	}
	return domain.DateOf(now)
}
