package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination mocks/mock_dashboard_service.go -package mocks github.com/mysupertc/MySuperTC-sub001/internal/domain DashboardService

// DashboardSummary is everything the dashboard page shows
type DashboardSummary struct {
	StatusCounts       map[TransactionStatus]int64 `json:"status_counts"`
	ActiveCount        int64                       `json:"active_count"`
	PendingCommission  float64                     `json:"pending_commission"`
	RecentTransactions []*Transaction              `json:"recent_transactions"`
	UpcomingEvents     []*CalendarEvent            `json:"upcoming_events"`
	OpenTasks          []*Item                     `json:"open_tasks"`
	OverdueTasks       int                         `json:"overdue_tasks"`
	GeneratedAt        time.Time                   `json:"generated_at"`
}

// DashboardService assembles the dashboard
type DashboardService interface {
	Summary(ctx context.Context) (*DashboardSummary, error)
}
