// Package portal is the submission form: field state, location suggestions,
// validation and posting to the ingestion endpoint.
package portal

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nitesh/newsmap/internal/geocode"
	"github.com/nitesh/newsmap/internal/logging"
	"github.com/nitesh/newsmap/pkg/models"
)

// ErrInFlight is returned by Submit while an earlier submission is pending.
var ErrInFlight = errors.New("submission already in progress")

// Submitter posts a submission under code.
type Submitter interface {
	Submit(ctx context.Context, code string, sub models.Submission) (*models.Record, error)
}

// State is a snapshot of the form.
type State struct {
	NewsURL     string
	Location    string
	Category    models.Category
	Suggestions []string
	FieldErrors FieldErrors
	Error       string
	Submitting  bool
	Link        string
}

type Form struct {
	mu         sync.Mutex
	state      State
	suggestGen uint64

	submitter Submitter
	suggester geocode.Suggester
	publicURL string
	newCode   func() string
}

// NewForm creates an empty form. suggester may be nil to disable
// autocomplete. Links are built as {publicURL}/data/{code}.
func NewForm(submitter Submitter, suggester geocode.Suggester, publicURL string) *Form {
	return &Form{
		state:     State{Category: models.DefaultCategory},
		submitter: submitter,
		suggester: suggester,
		publicURL: strings.TrimRight(publicURL, "/"),
		newCode:   uuid.NewString,
	}
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.state
	s.Suggestions = append([]string(nil), f.state.Suggestions...)
	if f.state.FieldErrors != nil {
		s.FieldErrors = make(FieldErrors, len(f.state.FieldErrors))
		for k, v := range f.state.FieldErrors {
			s.FieldErrors[k] = v
		}
	}
	return s
}

func (f *Form) SetNewsURL(u string) {
	f.mu.Lock()
	f.state.NewsURL = u
	f.mu.Unlock()
}

func (f *Form) SetCategory(c models.Category) {
	f.mu.Lock()
	f.state.Category = c
	f.mu.Unlock()
}

// SetLocation stores the lower-cased text and refreshes suggestions. Every
// call supersedes earlier ones; a late answer to an older query is dropped.
func (f *Form) SetLocation(ctx context.Context, text string) error {
	text = strings.ToLower(text)

	f.mu.Lock()
	f.state.Location = text
	f.suggestGen++
	gen := f.suggestGen
	if text == "" || f.suggester == nil {
		f.state.Suggestions = nil
		f.mu.Unlock()
		return nil
	}
	f.mu.Unlock()

	suggestions, err := f.suggester.Suggest(ctx, text)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.suggestGen {
		return nil
	}
	if err != nil {
		f.state.Suggestions = nil
		logging.Ctx(ctx).Warn().Err(err).Str("text", text).Msg("Location suggestions failed")
		return err
	}
	f.state.Suggestions = suggestions
	return nil
}

// Select takes a suggestion as the location. Pending suggestion queries
// are invalidated.
func (f *Form) Select(suggestion string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Location = suggestion
	f.state.Suggestions = nil
	f.suggestGen++
}

// Submit validates the form and posts it under a fresh code. On success the
// form is reset and the shareable link returned. The in-flight flag is cleared
// whatever the outcome.
func (f *Form) Submit(ctx context.Context) (string, error) {
	f.mu.Lock()
	if f.state.Submitting {
		f.mu.Unlock()
		return "", ErrInFlight
	}
	in := input{
		NewsURL:  strings.TrimSpace(f.state.NewsURL),
		Location: strings.TrimSpace(f.state.Location),
		Category: string(f.state.Category),
	}
	if ferrs := validateInput(in); ferrs != nil {
		f.state.FieldErrors = ferrs
		f.mu.Unlock()
		return "", ferrs
	}
	f.state.FieldErrors = nil
	f.state.Error = ""
	f.state.Submitting = true
	code := f.newCode()
	f.mu.Unlock()

	_, err := f.submitter.Submit(ctx, code, models.Submission{
		NewsURL:  in.NewsURL,
		Location: in.Location,
		Category: models.Category(in.Category),
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Submitting = false
	if err != nil {
		f.state.Error = err.Error()
		logging.Ctx(ctx).Error().Err(err).Str("code", code).Msg("Submission failed")
		return "", err
	}

	link := f.publicURL + "/data/" + code
	f.state = State{Category: models.DefaultCategory, Link: link}
	f.suggestGen++
	return link, nil
}
