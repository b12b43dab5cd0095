package service

import (
	"context"
	"fmt"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

type CalendarService struct {
	events domain.CalendarEventRepository
	items  domain.ItemRepository
	logger logger.Logger
}

func NewCalendarService(events domain.CalendarEventRepository, items domain.ItemRepository, logger logger.Logger) *CalendarService {
	return &CalendarService{
		events: events,
		items:  items,
		logger: logger,
	}
}

func (s *CalendarService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.CalendarEvent, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}

	events, err := s.events.List(ctx, filter)
	if err != nil {
		s.logger.Error(fmt.Sprintf("Failed to list calendar events: %v", err))
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	if events == nil {
		events = []*domain.CalendarEvent{}
	}

	return events, nil
}

func (s *CalendarService) CreateEvent(ctx context.Context, req *domain.CreateEventRequest) (*domain.CalendarEvent, error) {
	principal, err := domain.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	event, err := req.Validate()
	if err != nil {
		return nil, err
	}
	event.UserID = principal.ID

	created, err := s.events.Create(ctx, event)
	if err != nil {
		s.logger.WithField("user_id", principal.ID).Error(fmt.Sprintf("Failed to create calendar event: %v", err))
		return nil, fmt.Errorf("failed to create calendar event: %w", err)
	}

	return created, nil
}

func (s *CalendarService) UpdateEvent(ctx context.Context, req *domain.UpdateEventRequest) (*domain.CalendarEvent, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}

	patch, err := req.Validate()
	if err != nil {
		return nil, err
	}

	updated, err := s.events.Update(ctx, req.ID, patch)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		s.logger.WithField("event_id", req.ID).Error(fmt.Sprintf("Failed to update calendar event: %v", err))
		return nil, fmt.Errorf("failed to update calendar event: %w", err)
	}

	return updated, nil
}

func (s *CalendarService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return err
	}
	if id == "" {
		return domain.NewValidationError("id is required")
	}

	if err := s.events.Delete(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		s.logger.WithField("event_id", id).Error(fmt.Sprintf("Failed to delete calendar event: %v", err))
		return fmt.Errorf("failed to delete calendar event: %w", err)
	}

	return nil
}

// Agenda merges the events starting within [from, to] with the open tasks
// due on those days
func (s *CalendarService) Agenda(ctx context.Context, from, to domain.Date) ([]*domain.AgendaEntry, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, domain.NewValidationError("to must not be before from")
	}

	start := from.Time
	end := to.AddDays(1).Time
	events, err := s.events.List(ctx, domain.EventFilter{From: &start, To: &end})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}

	open := false
	tasks, err := s.items.List(ctx, domain.ItemKindTask, domain.ItemFilter{
		Completed: &open,
		DueFrom:   &from,
		DueTo:     &to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	entries := make([]*domain.AgendaEntry, 0, len(events)+len(tasks))
	for _, event := range events {
		entries = append(entries, domain.AgendaFromEvent(event))
	}
	for _, task := range tasks {
		if task.DueDate == nil || task.DueDate.IsZero() {
			continue
		}
		entries = append(entries, domain.AgendaFromTask(task))
	}
	domain.SortAgenda(entries)

	return entries, nil
}
