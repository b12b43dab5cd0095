package database

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mysupertc/MySuperTC-sub001/internal/domain"
)

// SeedResult counts the template rows inserted by a seed run
type SeedResult struct {
	Disclosures int64 `json:"disclosures"`
	Tasks       int64 `json:"tasks"`
	Emails      int64 `json:"emails"`
}

// TemplateID derives a stable id so seeding twice never duplicates a template
func TemplateID(table, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mysupertc:"+table+":"+name)).String()
}

func offset(days int) *int {
	return &days
}

// DefaultDisclosureTemplates are the documents every new transaction collects
var DefaultDisclosureTemplates = []domain.DisclosureTemplate{
	{DocumentName: "Seller Property Disclosure", Category: "Seller", Required: true},
	{DocumentName: "Lead-Based Paint Disclosure", Category: "Federal", Description: "Homes built before 1978", Required: true},
	{DocumentName: "Agency Disclosure", Category: "Brokerage", Required: true},
	{DocumentName: "Natural Hazard Disclosure", Category: "Seller", Required: true},
	{DocumentName: "HOA Documents", Category: "HOA", Description: "CC&Rs, budget and minutes", Required: false},
	{DocumentName: "Preliminary Title Report", Category: "Title", Required: true},
	{DocumentName: "Wire Fraud Advisory", Category: "Brokerage", Required: true},
}

// DefaultTaskTemplates are the tasks every new transaction starts with
var DefaultTaskTemplates = []domain.TaskTemplate{
	{Name: "Send executed contract to escrow", Section: "Contract", DueOffsetDays: offset(1)},
	{Name: "Confirm earnest money deposit", Section: "Contract", DueOffsetDays: offset(3)},
	{Name: "Schedule home inspection", Section: "Inspections", DueOffsetDays: offset(5)},
	{Name: "Review inspection report with client", Section: "Inspections", DueOffsetDays: offset(10)},
	{Name: "Order appraisal", Section: "Financing", DueOffsetDays: offset(7)},
	{Name: "Remove loan contingency", Section: "Financing", DueOffsetDays: offset(21)},
	{Name: "Schedule final walkthrough", Section: "Closing", DueOffsetDays: offset(28)},
	{Name: "Confirm closing appointment", Section: "Closing", DueOffsetDays: offset(29)},
	{Name: "Request client review", Section: "Post-Closing"},
}

// DefaultEmailTemplates are shared templates, visible to every agent
var DefaultEmailTemplates = []domain.EmailTemplate{
	{
		Name:     "Offer Accepted",
		Category: "Contract",
		Subject:  "Offer accepted: {{ transaction.property_address }}",
		Body: "Hi {{ client.name | default_text: \"there\" }},\n\n" +
			"Great news: your offer on {{ transaction.property_address }} was accepted at {{ transaction.sales_price | money }}.\n" +
			"I'll send the next steps and key dates shortly.\n\n" +
			"{{ agent.full_name | default_text: \"Your agent\" }}",
	},
	{
		Name:     "Inspection Scheduled",
		Category: "Inspections",
		Subject:  "Inspection scheduled for {{ transaction.property_address }}",
		Body: "Hi {{ client.name | default_text: \"there\" }},\n\n" +
			"The home inspection for {{ transaction.property_address }} is booked. Please plan to attend if you can.\n\n" +
			"{{ agent.full_name | default_text: \"Your agent\" }}",
	},
	{
		Name:     "Closing Reminder",
		Category: "Closing",
		Subject:  "Closing on {{ transaction.close_date }}",
		Body: "Hi {{ client.name | default_text: \"there\" }},\n\n" +
			"A reminder that {{ transaction.property_address }} is scheduled to close on {{ transaction.close_date }}.\n" +
			"Bring a photo ID and confirm your wire instructions by phone.\n\n" +
			"{{ agent.full_name | default_text: \"Your agent\" }}",
	},
}

// SeedTemplates inserts the default template catalogues. Existing rows are kept.
func SeedTemplates(ctx context.Context, db *sql.DB) (*SeedResult, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	result := &SeedResult{}

	disclosures := psql.Insert("disclosure_templates").
		Columns("id", "document_name", "category", "description", "required", "sort_order")
	for i, tpl := range DefaultDisclosureTemplates {
		disclosures = disclosures.Values(
			TemplateID("disclosure_templates", tpl.DocumentName),
			tpl.DocumentName, tpl.Category, tpl.Description, tpl.Required, i+1,
		)
	}

	tasks := psql.Insert("task_templates").
		Columns("id", "name", "section", "description", "due_offset_days", "sort_order")
	for i, tpl := range DefaultTaskTemplates {
		tasks = tasks.Values(
			TemplateID("task_templates", tpl.Name),
			tpl.Name, tpl.Section, tpl.Description, tpl.DueOffsetDays, i+1,
		)
	}

	emails := psql.Insert("email_templates").
		Columns("id", "name", "category", "subject", "body", "sort_order")
	for i, tpl := range DefaultEmailTemplates {
		emails = emails.Values(
			TemplateID("email_templates", tpl.Name),
			tpl.Name, tpl.Category, tpl.Subject, tpl.Body, i+1,
		)
	}

	steps := []struct {
		table string
		query sq.InsertBuilder
		count *int64
	}{
		{"disclosure_templates", disclosures, &result.Disclosures},
		{"task_templates", tasks, &result.Tasks},
		{"email_templates", emails, &result.Emails},
	}

	for _, step := range steps {
		query, args, err := step.query.Suffix("ON CONFLICT (id) DO NOTHING").ToSql()
		if err != nil {
			return nil, fmt.Errorf("failed to build %s seed query: %w", step.table, err)
		}

		res, err := db.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to seed %s: %w", step.table, err)
		}

		if *step.count, err = res.RowsAffected(); err != nil {
			return nil, fmt.Errorf("failed to count seeded %s: %w", step.table, err)
		}
	}

	return result, nil
}
