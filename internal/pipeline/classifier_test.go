package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_PartitionsCoverEveryTicket(t *testing.T) {
	llm := &fakeLLM{responses: []string{`[
		{"id":"T-1","decision":"feature","reason":"users can export data"},
		{"id":"T-2","decision":"fix","reason":"typo on settings page"},
		{"id":"T-3","decision":"exclude","reason":"internal refactor"}
	]`}}
	s := newTestService(llm)

	tickets := []domain.Ticket{
		ticket("T-1", "CSV export", "Adds CSV export to reports"),
		ticket("T-2", "Fix typo", "Settings page typo"),
		ticket("T-3", "Refactor auth module", "Internal cleanup"),
		ticket("T-4", "Mystery ticket", "No decision returned for this one"),
	}
	c := s.Classify(context.Background(), tickets)

	assert.Equal(t, len(tickets), c.Total())
	require.Len(t, c.Features, 1)
	require.Len(t, c.Fixes, 1)
	require.Len(t, c.Excluded, 2)
	assert.Equal(t, "T-1", c.Features[0].Ticket.ID)
	assert.Equal(t, "T-2", c.Fixes[0].Ticket.ID)
}

func TestClassify_MissingDecisionDefaultsToExcluded(t *testing.T) {
	llm := &fakeLLM{responses: []string{`[]`}}
	s := newTestService(llm)

	c := s.Classify(context.Background(), []domain.Ticket{ticket("T-9", "Orphan", "")})

	require.Len(t, c.Excluded, 1)
	assert.Empty(t, c.Features)
	assert.Empty(t, c.Fixes)
	assert.Equal(t, "No reason given", c.Excluded[0].Reason)
}

func TestClassify_UnknownDecisionIDIgnored(t *testing.T) {
	llm := &fakeLLM{responses: []string{`[
		{"id":"T-1","decision":"feature","reason":"real"},
		{"id":"T-999","decision":"feature","reason":"hallucinated"}
	]`}}
	s := newTestService(llm)

	c := s.Classify(context.Background(), []domain.Ticket{ticket("T-1", "Real", "")})

	assert.Equal(t, 1, c.Total())
	require.Len(t, c.Features, 1)
	assert.Equal(t, "T-1", c.Features[0].Ticket.ID)
}

func TestClassify_EmptyInputMakesNoCall(t *testing.T) {
	llm := &fakeLLM{}
	s := newTestService(llm)

	c := s.Classify(context.Background(), nil)

	assert.True(t, c.Empty())
	assert.Empty(t, llm.prompts)
}

func TestClassify_UnparseableResponseYieldsEmptyPartitions(t *testing.T) {
	llm := &fakeLLM{responses: []string{"I refuse to answer in JSON today."}}
	s := newTestService(llm)

	c := s.Classify(context.Background(), []domain.Ticket{ticket("T-1", "A", ""), ticket("T-2", "B", "")})

	assert.Equal(t, 0, c.Total())
	assert.True(t, c.Empty())
}

func TestClassify_InferenceErrorYieldsEmptyPartitions(t *testing.T) {
	llm := &fakeLLM{err: errors.New("rate limited")}
	s := newTestService(llm)

	c := s.Classify(context.Background(), []domain.Ticket{ticket("T-1", "A", "")})

	assert.Equal(t, 0, c.Total())
}

func TestClassify_PromptCarriesTicketFields(t *testing.T) {
	llm := &fakeLLM{responses: []string{`[]`}}
	s := newTestService(llm)

	tk := ticket("T-7", "Bulk import", "Imports many rows")
	tk.Assignee = &domain.Assignee{Name: "Dana", Email: "dana@acme.test"}
	tk.Comments = []domain.Comment{{Author: "Lee", Body: "shipped behind a flag"}}
	s.Classify(context.Background(), []domain.Ticket{tk})

	require.Len(t, llm.prompts, 1)
	p := llm.prompts[0]
	assert.Contains(t, p, "T-7")
	assert.Contains(t, p, "Bulk import")
	assert.Contains(t, p, "Dana (dana@acme.test)")
	assert.Contains(t, p, "Lee: shipped behind a flag")
	assert.Contains(t, p, s.cfg.ProductContext)
}
