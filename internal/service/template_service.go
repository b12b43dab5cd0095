package service

import (
	"context"
	"fmt"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

type TemplateService struct {
	repo   domain.TemplateRepository
	logger logger.Logger
}

func NewTemplateService(repo domain.TemplateRepository, logger logger.Logger) *TemplateService {
	return &TemplateService{
		repo:   repo,
		logger: logger,
	}
}

func (s *TemplateService) ListTemplates(ctx context.Context, templateType domain.TemplateType) (*domain.TemplateListResponse, error) {
	if templateType != "" && !templateType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid template type: %s", templateType))
	}

	all := templateType == ""
	response := &domain.TemplateListResponse{}
	var err error

	if all || templateType == domain.TemplateTypeDisclosure {
		if response.Disclosures, err = s.repo.ListDisclosureTemplates(ctx); err != nil {
			s.logger.Error(fmt.Sprintf("Failed to list disclosure templates: %v", err))
			return nil, fmt.Errorf("failed to list disclosure templates: %w", err)
		}
	}
	if all || templateType == domain.TemplateTypeTask {
		if response.Tasks, err = s.repo.ListTaskTemplates(ctx); err != nil {
			s.logger.Error(fmt.Sprintf("Failed to list task templates: %v", err))
			return nil, fmt.Errorf("failed to list task templates: %w", err)
		}
	}
	if all || templateType == domain.TemplateTypeEmail {
		if response.Emails, err = s.repo.ListEmailTemplates(ctx); err != nil {
			s.logger.Error(fmt.Sprintf("Failed to list email templates: %v", err))
			return nil, fmt.Errorf("failed to list email templates: %w", err)
		}
	}

	return response, nil
}
