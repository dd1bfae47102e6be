package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/config"
	"github.com/ericschwartz30/PUBLIC-Release-Notes-Automation-Bot/internal/domain"
	"github.com/rs/zerolog"
)

// fakeLLM replays scripted responses in order and records every prompt.
type fakeLLM struct {
	responses []string
	err       error
	prompts   []string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil { return "", f.err }
	if len(f.responses) == 0 { return "", errors.New("fakeLLM: out of responses") }
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

type fakeTracker struct {
	tickets []domain.Ticket
	err     error
	calls   int
}

func (f *fakeTracker) CompletedSince(_ context.Context, _ string) ([]domain.Ticket, error) {
	f.calls++
	return f.tickets, f.err
}

type fakeNotifier struct {
	configured bool
	err        error
	posts      []string
}

func (f *fakeNotifier) Configured() bool { return f.configured }
func (f *fakeNotifier) Post(_ context.Context, text string) error {
	f.posts = append(f.posts, text)
	return f.err
}

type fakeStore struct {
	boundary string
	present  bool
	loadErr  error
	saveErr  error
	saved    []string
}

func (f *fakeStore) Load(_ context.Context) (string, bool, error) {
	return f.boundary, f.present, f.loadErr
}

func (f *fakeStore) Save(_ context.Context, boundary string) error {
	if f.saveErr != nil { return f.saveErr }
	f.saved = append(f.saved, boundary)
	return nil
}

type fakeMeetings struct {
	meetings []domain.Meeting
	err      error
	terms    []string
	days     int
}

func (f *fakeMeetings) CustomerMeetings(_ context.Context, terms []string, daysBack int) ([]domain.Meeting, error) {
	f.terms = terms
	f.days = daysBack
	return f.meetings, f.err
}

func testConfig() config.Config {
	return config.Config{
		ProductContext:  "Acme ships a data platform.",
		TrackerContext:  "Engineering tracker.",
		VoiceTone:       "friendly and concrete",
		LookbackDays:    7,
		MeetingLookback: 30,
	}
}

func newTestService(llm LLM) *Service {
	return New(testConfig(), zerolog.Nop(), &fakeStore{}, &fakeTracker{}, llm, &fakeNotifier{}, &fakeMeetings{}, nil)
}

func ticket(id, title, desc string) domain.Ticket {
	return domain.Ticket{ID: id, Title: title, Description: desc, UpdatedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)}
}
