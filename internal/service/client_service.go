package service

import (
	"context"
	"fmt"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

type ClientService struct {
	repo   domain.ClientRepository
	logger logger.Logger
}

func NewClientService(repo domain.ClientRepository, logger logger.Logger) *ClientService {
	return &ClientService{
		repo:   repo,
		logger: logger,
	}
}

func (s *ClientService) ListClients(ctx context.Context, filter domain.ClientFilter) ([]*domain.Client, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}

	clients, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error(fmt.Sprintf("Failed to list clients: %v", err))
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	if clients == nil {
		clients = []*domain.Client{}
	}

	return clients, nil
}

func (s *ClientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	if _, err := domain.RequirePrincipal(ctx); err != nil {
		return nil, err
	}

	client, err := s.repo.Get(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		s.logger.WithField("client_id", id).Error(fmt.Sprintf("Failed to get client: %v", err))
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return client, nil
}

func (s *ClientService) CreateClient(ctx context.Context, req *domain.CreateClientRequest) (*domain.Client, error) {
	principal, err := domain.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	client, err := req.Validate()
	if err != nil {
		return nil, err
	}
	client.UserID = principal.ID

	created, err := s.repo.Create(ctx, client)
	if err != nil {
		s.logger.WithField("user_id", principal.ID).Error(fmt.Sprintf("Failed to create client: %v", err))
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return created, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, req *domain.UpdateClientRequest) (*domain.Client, error) {
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
		s.logger.WithField("client_id", req.ID).Error(fmt.Sprintf("Failed to update client: %v", err))
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	return updated, nil
}

func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
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
		s.logger.WithField("client_id", id).Error(fmt.Sprintf("Failed to delete client: %v", err))
		return fmt.Errorf("failed to delete client: %w", err)
	}

	return nil
}
