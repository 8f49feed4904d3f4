package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/internal/ailink"
	"github.com/promptdeck/promptdeck/internal/ailink/driver"
	"github.com/promptdeck/promptdeck/internal/deck"
	"github.com/promptdeck/promptdeck/internal/store"
)

type fakeAssistant struct {
	complexity ailink.Complexity
	plan       *ailink.Plan
	reply      string
	execErr    error

	triaged  []string
	planned  []ailink.PlanRequest
	executed []ailink.ExecuteRequest
}

func (f *fakeAssistant) Triage(_ context.Context, prompt string) (*ailink.TriageResult, error) {
	f.triaged = append(f.triaged, prompt)
	return &ailink.TriageResult{Complexity: f.complexity}, nil
}

func (f *fakeAssistant) Plan(_ context.Context, req ailink.PlanRequest) (*ailink.Plan, error) {
	f.planned = append(f.planned, req)
	if f.plan == nil {
		return nil, errors.New("no plan scripted")
	}
	return f.plan, nil
}

func (f *fakeAssistant) Execute(_ context.Context, req ailink.ExecuteRequest) (*ailink.ExecuteResult, error) {
	f.executed = append(f.executed, req)
	if f.execErr != nil {
		return nil, f.execErr
	}
	return &ailink.ExecuteResult{
		Content: f.reply,
		Model:   req.Model,
		Tools:   ailink.FilterTools(req.Tools, []string{"browser_search", "code_interpreter"}),
	}, nil
}

type fakeDecks struct {
	specs []*deck.Spec
	err   error
}

func (f *fakeDecks) Build(_ context.Context, spec *deck.Spec) ([]byte, error) {
	f.specs = append(f.specs, spec)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("PK-deck"), nil
}

type fakeHistory struct {
	rows []store.Generation
	err  error
}

func (f *fakeHistory) RecordGeneration(_ context.Context, g store.Generation) (int64, error) {
	f.rows = append(f.rows, g)
	return int64(len(f.rows)), f.err
}

func newGenerator(assistant *fakeAssistant) (*Generator, *fakeDecks, *fakeHistory) {
	decks := &fakeDecks{}
	history := &fakeHistory{}
	return &Generator{
		Assistant:     assistant,
		Decks:         decks,
		History:       history,
		DefaultModel:  "groq/compound",
		AllowedModels: []string{"groq/compound", "llama-3.3-70b-versatile"},
		now:           func() time.Time { return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC) },
	}, decks, history
}

func TestGeneratePromptRequired(t *testing.T) {
	assistant := &fakeAssistant{}
	gen, _, history := newGenerator(assistant)

	for _, prompt := range []string{"", "   \n"} {
		_, err := gen.Generate(context.Background(), Request{Prompt: prompt})
		assert.ErrorIs(t, err, ErrPromptRequired)
	}
	assert.Empty(t, assistant.triaged)
	assert.Empty(t, assistant.executed)
	assert.Empty(t, history.rows)
	assert.Equal(t, CodePromptRequired, ErrorCode(ErrPromptRequired))
}

func TestGenerateAutoSimpleSkipsPlanner(t *testing.T) {
	assistant := &fakeAssistant{complexity: ailink.ComplexitySimple, reply: "4"}
	gen, _, history := newGenerator(assistant)

	result, err := gen.Generate(context.Background(), Request{
		Prompt:    "Was ist 2+2?",
		Model:     "llama-3.3-70b-versatile",
		Tools:     map[string]bool{"websuche": true, "code_interpreter": false},
		RequestID: "req-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "4", result.Text)
	assert.False(t, result.IsDocument())

	assert.Equal(t, []string{"Was ist 2+2?"}, assistant.triaged)
	assert.Empty(t, assistant.planned)
	require.Len(t, assistant.executed, 1)
	assert.Equal(t, "llama-3.3-70b-versatile", assistant.executed[0].Model)
	assert.Equal(t, []string{"browser_search"}, assistant.executed[0].Tools)
	assert.Equal(t, ailink.FormatText, assistant.executed[0].Format)

	assert.Equal(t, ModeAuto, result.Trace.Mode)
	assert.Equal(t, ailink.ComplexitySimple, result.Trace.Complexity)
	assert.False(t, result.Trace.Planned)

	require.Len(t, history.rows, 1)
	row := history.rows[0]
	assert.Equal(t, "req-1", row.RequestID)
	assert.Equal(t, store.StatusOK, row.Status)
	assert.Equal(t, "simple", row.Complexity)
	assert.Equal(t, 12, row.PromptChars)
	assert.Empty(t, row.ErrorCode)
}

func TestGenerateAutoComplexUsesPlan(t *testing.T) {
	url := "https://example.org"
	assistant := &fakeAssistant{
		complexity: ailink.ComplexityComplex,
		plan: &ailink.Plan{
			FinalModel:      "llama-3.3-70b-versatile",
			FinalTools:      []string{"browser_search"},
			OptimizedPrompt: "Bessere Anfrage",
			FinalURL:        &url,
		},
		reply: "Antwort",
	}
	gen, _, _ := newGenerator(assistant)

	result, err := gen.Generate(context.Background(), Request{Prompt: "Recherchiere", OutputFormat: "code"})
	require.NoError(t, err)

	require.Len(t, assistant.planned, 1)
	assert.Equal(t, ailink.FormatCode, assistant.planned[0].Format)
	exec := assistant.executed[0]
	assert.Equal(t, "Bessere Anfrage", exec.Prompt)
	assert.Equal(t, "llama-3.3-70b-versatile", exec.Model)
	assert.Equal(t, []string{"browser_search"}, exec.Tools)
	assert.Equal(t, url, exec.ReferenceURL)
	assert.True(t, result.Trace.Planned)
	assert.Equal(t, url, result.Trace.ReferenceURL)
}

func TestGeneratePlanModeSkipsTriage(t *testing.T) {
	assistant := &fakeAssistant{plan: &ailink.Plan{FinalModel: "groq/compound", OptimizedPrompt: "x"}, reply: "ok"}
	gen, _, _ := newGenerator(assistant)

	result, err := gen.Generate(context.Background(), Request{Prompt: "p", Mode: "PLAN"})
	require.NoError(t, err)
	assert.Empty(t, assistant.triaged)
	assert.Len(t, assistant.planned, 1)
	assert.Equal(t, ModePlan, result.Trace.Mode)
	assert.Empty(t, result.Trace.Complexity)
}

func TestGenerateDirectFallsBackToDefaultModel(t *testing.T) {
	assistant := &fakeAssistant{reply: "ok"}
	gen, _, _ := newGenerator(assistant)

	result, err := gen.Generate(context.Background(), Request{Prompt: "p", Mode: "direct", Model: "gpt-unknown"})
	require.NoError(t, err)
	assert.Empty(t, assistant.triaged)
	assert.Empty(t, assistant.planned)
	assert.Equal(t, "groq/compound", assistant.executed[0].Model)
	assert.Equal(t, "groq/compound", result.Trace.Model)
}

func TestGenerateOverridesWinOverPlanner(t *testing.T) {
	plan := &ailink.Plan{FinalModel: "llama-3.3-70b-versatile", FinalTools: []string{"browser_search"}, OptimizedPrompt: "x"}

	t.Run("model and tools", func(t *testing.T) {
		assistant := &fakeAssistant{plan: plan, reply: "ok"}
		gen, _, _ := newGenerator(assistant)
		_, err := gen.Generate(context.Background(), Request{
			Prompt:        "p",
			Mode:          "plan",
			UserOverrides: &Overrides{Model: "groq/compound", Tools: []string{"code_interpreter", "shell"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "groq/compound", assistant.executed[0].Model)
		assert.Equal(t, []string{"code_interpreter", "shell"}, assistant.executed[0].Tools)
	})

	t.Run("empty override keeps plan", func(t *testing.T) {
		assistant := &fakeAssistant{plan: plan, reply: "ok"}
		gen, _, _ := newGenerator(assistant)
		_, err := gen.Generate(context.Background(), Request{Prompt: "p", Mode: "plan", UserOverrides: &Overrides{}})
		require.NoError(t, err)
		assert.Equal(t, "llama-3.3-70b-versatile", assistant.executed[0].Model)
		assert.Equal(t, []string{"browser_search"}, assistant.executed[0].Tools)
	})

	t.Run("disallowed override model", func(t *testing.T) {
		assistant := &fakeAssistant{plan: plan, reply: "ok"}
		gen, _, _ := newGenerator(assistant)
		_, err := gen.Generate(context.Background(), Request{Prompt: "p", Mode: "plan", UserOverrides: &Overrides{Model: "evil"}})
		require.NoError(t, err)
		assert.Equal(t, "groq/compound", assistant.executed[0].Model)
	})
}

func TestGeneratePowerpointBuildsDeck(t *testing.T) {
	assistant := &fakeAssistant{reply: `{"slides":[{"title":"Eins","content":["a"]}]}`}
	gen, decks, _ := newGenerator(assistant)

	result, err := gen.Generate(context.Background(), Request{Prompt: "Folien", Mode: "direct", OutputFormat: "pptx"})
	require.NoError(t, err)
	require.True(t, result.IsDocument())
	assert.Equal(t, []byte("PK-deck"), result.Document)
	assert.Equal(t, "praesentation.pptx", result.FileName)
	assert.Equal(t, deck.MIMEType, result.MIMEType)
	assert.Equal(t, ailink.FormatPowerpoint, assistant.executed[0].Format)

	require.Len(t, decks.specs, 1)
	assert.Equal(t, "Eins", decks.specs[0].Slides[0].Title)
}

func TestGeneratePowerpointInvalidReply(t *testing.T) {
	assistant := &fakeAssistant{reply: "keine Folien"}
	gen, decks, history := newGenerator(assistant)

	_, err := gen.Generate(context.Background(), Request{Prompt: "Folien", Mode: "direct", OutputFormat: "powerpoint"})
	require.ErrorIs(t, err, ErrDeckInvalid)
	assert.Empty(t, decks.specs)
	require.Len(t, history.rows, 1)
	assert.Equal(t, CodeDeckInvalid, history.rows[0].ErrorCode)
}

func TestGenerateDeckBuildFailure(t *testing.T) {
	assistant := &fakeAssistant{reply: `{"slides":[]}`}
	gen, decks, _ := newGenerator(assistant)
	decks.err = errors.New("zip failed")

	_, err := gen.Generate(context.Background(), Request{Prompt: "Folien", Mode: "direct", OutputFormat: "powerpoint"})
	require.Error(t, err)
	assert.Equal(t, CodeDeckBuild, ErrorCode(err))
}

func TestGenerateProviderErrorIsRecorded(t *testing.T) {
	assistant := &fakeAssistant{execErr: &driver.ProviderError{Provider: "groq", StatusCode: 429, Message: "slow down"}}
	gen, _, history := newGenerator(assistant)

	_, err := gen.Generate(context.Background(), Request{Prompt: "p", Mode: "direct"})
	require.Error(t, err)
	require.Len(t, history.rows, 1)
	assert.Equal(t, store.StatusError, history.rows[0].Status)
	assert.Equal(t, "AILINK_PROVIDER_RATE_LIMIT", history.rows[0].ErrorCode)
}

func TestGenerateHistoryFailureIsIgnored(t *testing.T) {
	assistant := &fakeAssistant{reply: "ok"}
	gen, _, history := newGenerator(assistant)
	history.err = errors.New("disk full")

	result, err := gen.Generate(context.Background(), Request{Prompt: "p", Mode: "direct"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Text)
}

func TestGenerateWithoutHistory(t *testing.T) {
	assistant := &fakeAssistant{reply: "ok"}
	gen, _, _ := newGenerator(assistant)
	gen.History = nil

	_, err := gen.Generate(context.Background(), Request{Prompt: "p", Mode: "direct"})
	require.NoError(t, err)
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeAuto, ParseMode(""))
	assert.Equal(t, ModeAuto, ParseMode("whatever"))
	assert.Equal(t, ModePlan, ParseMode(" plan "))
	assert.Equal(t, ModeDirect, ParseMode("Direct"))
}
