package repository

import (
	"context"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
	"github.com/mysupertc/MySuperTC-sub001/pkg/postgrest"
)

const (
	disclosureTemplatesTable = "disclosure_templates"
	taskTemplatesTable       = "task_templates"
	emailTemplatesTable      = "email_templates"
)

// TemplateRepository implements domain.TemplateRepository. Templates are
// shared reference data, so reads do not filter by owner.
type TemplateRepository struct {
	dataRepository
}

// NewTemplateRepository creates a new TemplateRepository instance
func NewTemplateRepository(client *postgrest.Client) domain.TemplateRepository {
	return &TemplateRepository{dataRepository{client: client}}
}

// ListDisclosureTemplates returns the disclosure catalogue in display order
func (r *TemplateRepository) ListDisclosureTemplates(ctx context.Context) ([]*domain.DisclosureTemplate, error) {
	res := r.session(ctx).From(disclosureTemplatesTable).Select("*").Order("sort_order", true).Execute(ctx)
	return readRows[domain.DisclosureTemplate](res, disclosureTemplatesTable)
}

// ListTaskTemplates returns the task catalogue in display order
func (r *TemplateRepository) ListTaskTemplates(ctx context.Context) ([]*domain.TaskTemplate, error) {
	res := r.session(ctx).From(taskTemplatesTable).Select("*").Order("sort_order", true).Execute(ctx)
	return readRows[domain.TaskTemplate](res, taskTemplatesTable)
}

// ListEmailTemplates returns the email templates visible to the caller
func (r *TemplateRepository) ListEmailTemplates(ctx context.Context) ([]*domain.EmailTemplate, error) {
	res := r.session(ctx).From(emailTemplatesTable).Select("*").Order("sort_order", true).Execute(ctx)
	return readRows[domain.EmailTemplate](res, emailTemplatesTable)
}

// GetEmailTemplate returns one email template
func (r *TemplateRepository) GetEmailTemplate(ctx context.Context, id string) (*domain.EmailTemplate, error) {
	res := r.session(ctx).From(emailTemplatesTable).Select("*").Eq("id", id).Limit(1).Execute(ctx)
	return readOne[domain.EmailTemplate](res, "email template", id)
}
