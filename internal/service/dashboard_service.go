package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

const (
	dashboardRecentTransactions = 5
	dashboardUpcomingDays       = 7
	dashboardUpcomingEvents     = 10
	dashboardOpenTasks          = 10
	dashboardTaskScan           = 200
	dashboardPipelineScan       = 500
)

type DashboardService struct {
	transactions domain.TransactionRepository
	events       domain.CalendarEventRepository
	items        domain.ItemRepository
	logger       logger.Logger
	now          func() time.Time
}

func NewDashboardService(transactions domain.TransactionRepository, events domain.CalendarEventRepository, items domain.ItemRepository, logger logger.Logger) *DashboardService {
	return &DashboardService{
		transactions: transactions,
		events:       events,
		items:        items,
		logger:       logger,
		now:          time.Now,
	}
}

// Summary runs the dashboard queries concurrently and waits for all of them.
// The first failure cancels the others and is returned.
func (s *DashboardService) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	summary := &domain.DashboardSummary{GeneratedAt: now}

	var (
		counts   map[domain.TransactionStatus]int64
		recent   []*domain.Transaction
		pipeline []*domain.Transaction
		events   []*domain.CalendarEvent
		tasks    []*domain.Item
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if counts, err = s.transactions.CountByStatus(gctx); err != nil {
			return fmt.Errorf("failed to count transactions: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		recent, _, err = s.transactions.List(gctx, domain.TransactionFilter{
			OrderBy: "updated_at",
			Limit:   dashboardRecentTransactions,
		})
		if err != nil {
			return fmt.Errorf("failed to list recent transactions: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		pipeline, _, err = s.transactions.List(gctx, domain.TransactionFilter{
			Status:  activeStatuses(),
			OrderBy: "close_date",
			Limit:   dashboardPipelineScan,
		})
		if err != nil {
			return fmt.Errorf("failed to list active transactions: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		from := now
		to := now.AddDate(0, 0, dashboardUpcomingDays)
		var err error
		events, err = s.events.List(gctx, domain.EventFilter{From: &from, To: &to, Limit: dashboardUpcomingEvents})
		if err != nil {
			return fmt.Errorf("failed to list upcoming events: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		open := false
		var err error
		tasks, err = s.items.List(gctx, domain.ItemKindTask, domain.ItemFilter{Completed: &open, Limit: dashboardTaskScan})
		if err != nil {
			return fmt.Errorf("failed to list open tasks: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error(fmt.Sprintf("Failed to build dashboard: %v", err))
		return nil, err
	}

	summary.StatusCounts = make(map[domain.TransactionStatus]int64, len(domain.TransactionStatuses))
	for _, status := range domain.TransactionStatuses {
		summary.StatusCounts[status] = counts[status]
		if status != domain.TransactionStatusClosed && status != domain.TransactionStatusCancelled {
			summary.ActiveCount += counts[status]
		}
	}

	for _, t := range pipeline {
		summary.PendingCommission += t.GrossCommission()
	}

	summary.RecentTransactions = nonNilTransactions(recent)
	summary.UpcomingEvents = events
	if summary.UpcomingEvents == nil {
		summary.UpcomingEvents = []*domain.CalendarEvent{}
	}

	summary.OpenTasks = make([]*domain.Item, 0, dashboardOpenTasks)
	for _, task := range tasks {
		if task.IsOverdue(now) {
			summary.OverdueTasks++
		}
		if len(summary.OpenTasks) < dashboardOpenTasks {
			summary.OpenTasks = append(summary.OpenTasks, task)
		}
	}

	return summary, nil
}

func activeStatuses() []domain.TransactionStatus {
	out := make([]domain.TransactionStatus, 0, len(domain.TransactionStatuses))
	for _, status := range domain.TransactionStatuses {
		t := domain.Transaction{Status: status}
		if t.IsActive() {
			out = append(out, status)
		}
	}
	return out
}

func nonNilTransactions(in []*domain.Transaction) []*domain.Transaction {
	if in == nil {
		return []*domain.Transaction{}
	}
	return in
}
