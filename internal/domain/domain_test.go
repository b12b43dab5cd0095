package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Due   *Date `json:"due"`
		Close Date  `json:"close"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-03-15","close":"2024-04-01T15:04:05Z"}`), &payload))
	require.NotNil(t, payload.Due)
	assert.Equal(t, "2024-03-15", payload.Due.String())
	assert.Equal(t, "2024-04-01", payload.Close.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2024-03-15","close":"2024-04-01"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"due":null,"close":""}`), &payload))
	assert.Nil(t, payload.Due)
	assert.True(t, payload.Close.IsZero())

	out, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"close":"next week"}`), &payload))
}

func TestDate_Arithmetic(t *testing.T) {
	d := NewDate(2024, time.February, 28)
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.True(t, d.Before(d.AddDays(1)))
	assert.False(t, d.Before(d))

	local := time.Date(2024, 5, 1, 23, 30, 0, 0, time.FixedZone("PDT", -7*3600))
	assert.Equal(t, "2024-05-01", DateOf(local).String())
}

func TestPrincipalContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, PrincipalFromContext(ctx))

	_, err := RequirePrincipal(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	p := &Principal{ID: "u1", Email: "agent@example.com", AccessToken: "tok"}
	ctx = WithPrincipal(ctx, p)
	assert.Same(t, p, PrincipalFromContext(ctx))

	got, err := RequirePrincipal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = RequirePrincipal(WithPrincipal(context.Background(), &Principal{}))
	assert.ErrorIs(t, err, ErrUnauthenticated)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "tok")
}

func TestErrors(t *testing.T) {
	nf := fmt.Errorf("lookup: %w", &ErrNotFound{Entity: "transaction", ID: "42"})
	assert.True(t, IsNotFound(nf))
	assert.EqualError(t, errors.Unwrap(nf), "transaction not found with ID: 42")
	assert.False(t, IsNotFound(errors.New("boom")))

	ve := fmt.Errorf("create: %w", NewValidationError("title is required"))
	assert.True(t, IsValidationError(ve))
	assert.Contains(t, ve.Error(), "validation error: title is required")
}

func TestSignInRequest_Validate(t *testing.T) {
	assert.NoError(t, (&SignInRequest{Email: "agent@example.com", Password: "pw"}).Validate())
	assert.Error(t, (&SignInRequest{Password: "pw"}).Validate())
	assert.Error(t, (&SignInRequest{Email: "not-an-email", Password: "pw"}).Validate())
	assert.Error(t, (&SignInRequest{Email: "agent@example.com"}).Validate())
}

func TestItem_IsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	yesterday := NewDate(2024, 6, 9)
	today := NewDate(2024, 6, 10)

	assert.True(t, (&Item{DueDate: &yesterday}).IsOverdue(now))
	assert.False(t, (&Item{DueDate: &today}).IsOverdue(now))
	assert.False(t, (&Item{DueDate: &yesterday, Completed: true}).IsOverdue(now))
	assert.False(t, (&Item{}).IsOverdue(now))
}

func TestItemProgress_Add(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	past := NewDate(2024, 6, 1)
	progress := &ItemProgress{TransactionID: "tx"}
	progress.Add(&Item{Kind: ItemKindTask, Completed: true}, now)
	progress.Add(&Item{Kind: ItemKindTask, DueDate: &past}, now)
	progress.Add(&Item{Kind: ItemKindDisclosure}, now)

	assert.Equal(t, 3, progress.Total)
	assert.Equal(t, 1, progress.Completed)
	assert.Equal(t, 1, progress.Overdue)
	assert.Equal(t, 33, progress.Percent)
	assert.Equal(t, KindProgress{Total: 2, Completed: 1, Overdue: 1}, progress.ByKind[ItemKindTask])
}

func TestItemKind_Table(t *testing.T) {
	assert.Equal(t, "checklist_items", ItemKindChecklist.Table())
	assert.Equal(t, "disclosure_items", ItemKindDisclosure.Table())
	assert.Equal(t, "task_items", ItemKindTask.Table())
	assert.False(t, ItemKind("notes").IsValid())
}

func TestUpdateItemRequest_Validate(t *testing.T) {
	done := true
	patch, err := (&UpdateItemRequest{Kind: ItemKindTask, ID: "i1", Completed: &done}).Validate()
	require.NoError(t, err)
	assert.Equal(t, true, patch["completed"])
	assert.NotNil(t, patch["completed_at"])

	reopen := CompletionPatch(false, time.Now())
	assert.Equal(t, false, reopen["completed"])
	assert.Nil(t, reopen["completed_at"])
	assert.Contains(t, reopen, "completed_at")

	_, err = (&UpdateItemRequest{Kind: "notes", ID: "i1", Completed: &done}).Validate()
	assert.Error(t, err)
}

func TestSortAgenda(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	entries := []*AgendaEntry{
		{Title: "Inspection", At: day.Add(14 * time.Hour)},
		{Title: "Closing", At: day.AddDate(0, 0, 1).Add(9 * time.Hour)},
		{Title: "Send disclosures", At: day, AllDay: true, Kind: AgendaKindTask},
		{Title: "Appraisal", At: day.Add(9 * time.Hour)},
	}
	SortAgenda(entries)

	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}
	assert.Equal(t, []string{"Send disclosures", "Appraisal", "Inspection", "Closing"}, titles)
}

func TestAgendaRequest_FromURLParams(t *testing.T) {
	today := NewDate(2024, 6, 10)

	var req AgendaRequest
	require.NoError(t, req.FromURLParams(url.Values{}, today))
	assert.Equal(t, "2024-06-10", req.From.String())
	assert.Equal(t, "2024-06-16", req.To.String())

	assert.Error(t, req.FromURLParams(url.Values{"from": {"2024-06-10"}, "to": {"2024-06-01"}}, today))
	assert.Error(t, req.FromURLParams(url.Values{"to": {"2025-06-01"}}, today))
}

func TestCreateEventRequest_Validate(t *testing.T) {
	start := time.Date(2024, 6, 10, 14, 0, 0, 0, time.FixedZone("EST", -5*3600))
	end := start.Add(-time.Hour)

	_, err := (&CreateEventRequest{Title: "Showing", StartTime: start, EndTime: &end}).Validate()
	assert.Error(t, err)

	_, err = (&CreateEventRequest{Title: "Showing"}).Validate()
	assert.Error(t, err)

	event, err := (&CreateEventRequest{Title: " Showing ", StartTime: start}).Validate()
	require.NoError(t, err)
	assert.Equal(t, "Showing", event.Title)
	assert.Equal(t, time.UTC, event.StartTime.Location())
}

func TestSendEmailRequest_Validate(t *testing.T) {
	assert.NoError(t, (&SendEmailRequest{To: []string{" buyer@example.com"}, TemplateID: "t1"}).Validate())
	assert.NoError(t, (&SendEmailRequest{To: []string{"buyer@example.com"}, Subject: "Hi", Body: "There"}).Validate())
	assert.Error(t, (&SendEmailRequest{TemplateID: "t1"}).Validate())
	assert.Error(t, (&SendEmailRequest{To: []string{"nope"}, TemplateID: "t1"}).Validate())
	assert.Error(t, (&SendEmailRequest{To: []string{"buyer@example.com"}, Subject: "Hi"}).Validate())
}

func TestMLSLookupRequest_FromURLParams(t *testing.T) {
	var req MLSLookupRequest
	require.NoError(t, req.FromURLParams(url.Values{"mls_number": {" ML-81234 "}}))
	assert.Equal(t, "ML-81234", req.MLSNumber)

	assert.Error(t, req.FromURLParams(url.Values{}))
	assert.Error(t, req.FromURLParams(url.Values{"mls_number": {"81234&limit=100"}}))
}

func TestProfile_Redacted(t *testing.T) {
	p := &Profile{ID: "u1", GmailConnected: true, GmailAccessToken: "sealed", GmailRefreshToken: "sealed"}
	r := p.Redacted()
	assert.Empty(t, r.GmailAccessToken)
	assert.Empty(t, r.GmailRefreshToken)
	assert.True(t, r.GmailConnected)
	assert.Equal(t, "sealed", p.GmailAccessToken)
}

func TestUpdateProfileRequest_Validate(t *testing.T) {
	theme := "dark"
	patch, err := (&UpdateProfileRequest{Theme: &theme}).Validate()
	require.NoError(t, err)
	assert.Equal(t, "dark", patch["theme"])

	bad := "neon"
	_, err = (&UpdateProfileRequest{Theme: &bad}).Validate()
	assert.Error(t, err)

	_, err = (&UpdateProfileRequest{}).Validate()
	assert.Error(t, err)
}

func TestCreateClientRequest_Validate(t *testing.T) {
	client, err := (&CreateClientRequest{Name: " Pat Buyer ", Email: "Pat@Example.com"}).Validate()
	require.NoError(t, err)
	assert.Equal(t, "Pat Buyer", client.Name)
	assert.Equal(t, "pat@example.com", client.Email)
	assert.Equal(t, ClientTypeBuyer, client.Type)

	_, err = (&CreateClientRequest{Name: "Pat", Email: "nope"}).Validate()
	assert.Error(t, err)
	_, err = (&CreateClientRequest{Name: "Pat", Type: "tenant"}).Validate()
	assert.Error(t, err)
	_, err = (&CreateClientRequest{}).Validate()
	assert.Error(t, err)
}
