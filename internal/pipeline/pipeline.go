// Package pipeline runs one generation: triage, planning, execution and
// optional deck assembly.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/ailink"
	"github.com/promptdeck/promptdeck/internal/ailink/driver"
	"github.com/promptdeck/promptdeck/internal/deck"
	"github.com/promptdeck/promptdeck/internal/metrics"
	"github.com/promptdeck/promptdeck/internal/observability"
	"github.com/promptdeck/promptdeck/internal/store"
)

// Sentinel errors callers can distinguish.
var (
	// ErrPromptRequired is returned for a missing or blank prompt.
	ErrPromptRequired = errors.New("prompt is required")
	// ErrDeckInvalid wraps executor replies that are not a slide deck.
	ErrDeckInvalid = errors.New("slide deck reply invalid")
)

// Error codes stored with failed generations.
const (
	CodePromptRequired = "PROMPT_REQUIRED"
	CodeDeckInvalid    = "DECK_INVALID"
	CodeDeckBuild      = "DECK_BUILD_FAILED"
	CodeInternal       = "INTERNAL_ERROR"
)

type deckBuildError struct{ err error }

func (e *deckBuildError) Error() string { return "build slide deck: " + e.err.Error() }
func (e *deckBuildError) Unwrap() error { return e.err }

// ErrorCode classifies a Generate error for history rows and logs.
func ErrorCode(err error) string {
	var (
		buildErr    *deckBuildError
		rawErr      *ailink.RawResponseError
		providerErr *driver.ProviderError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPromptRequired):
		return CodePromptRequired
	case errors.Is(err, ErrDeckInvalid):
		return CodeDeckInvalid
	case errors.As(err, &buildErr):
		return CodeDeckBuild
	case errors.As(err, &rawErr), errors.As(err, &providerErr), driver.Classify(err) == driver.ClassTimeout:
		return ailink.DescribeError(err).Code
	default:
		return CodeInternal
	}
}

// Mode selects which preparatory calls run before execution.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModePlan   Mode = "plan"
	ModeDirect Mode = "direct"
)

// ParseMode normalizes a request mode. Unknown values run as auto.
func ParseMode(value string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModePlan:
		return ModePlan
	case ModeDirect:
		return ModeDirect
	default:
		return ModeAuto
	}
}

// Overrides are caller choices that win over the planner.
type Overrides struct {
	Model string   `json:"model,omitempty"`
	Tools []string `json:"tools,omitempty"`
}

// Request is the body of a generation request.
type Request struct {
	Prompt        string          `json:"prompt"`
	Mode          string          `json:"mode,omitempty"`
	OutputFormat  string          `json:"output_format,omitempty"`
	Model         string          `json:"model,omitempty"`
	Tools         map[string]bool `json:"tools,omitempty"`
	UserOverrides *Overrides      `json:"user_overrides,omitempty"`

	// RequestID correlates logs and history rows; set by the caller.
	RequestID string `json:"-"`
}

// Trace records the choices the pipeline made.
type Trace struct {
	Mode         Mode
	Format       ailink.OutputFormat
	Complexity   ailink.Complexity
	Planned      bool
	Model        string
	Tools        []string
	ReferenceURL string
}

// Result is either Text or a Document.
type Result struct {
	Text     string
	Document []byte
	FileName string
	MIMEType string
	Trace    Trace
}

// IsDocument reports whether the result carries a binary document.
func (r *Result) IsDocument() bool {
	return r != nil && r.Document != nil
}

// Assistant is the model-call surface the pipeline needs.
type Assistant interface {
	Triage(ctx context.Context, prompt string) (*ailink.TriageResult, error)
	Plan(ctx context.Context, req ailink.PlanRequest) (*ailink.Plan, error)
	Execute(ctx context.Context, req ailink.ExecuteRequest) (*ailink.ExecuteResult, error)
}

// DeckBuilder renders slide specs.
type DeckBuilder interface {
	Build(ctx context.Context, spec *deck.Spec) ([]byte, error)
}

// HistoryRecorder stores generation rows.
type HistoryRecorder interface {
	RecordGeneration(ctx context.Context, g store.Generation) (int64, error)
}

// Generator runs generations.
type Generator struct {
	Assistant Assistant
	Decks     DeckBuilder

	// History is optional.
	History HistoryRecorder

	// DefaultModel is used when no allowed model was chosen.
	DefaultModel  string
	AllowedModels []string

	now func() time.Time
}

// New wires a generator from an ailink service.
func New(service *ailink.Service, decks DeckBuilder, history HistoryRecorder) *Generator {
	g := &Generator{Assistant: service, Decks: decks, History: history}
	if service != nil && service.Providers != nil {
		cfg := service.Providers.Config()
		g.DefaultModel = cfg.Models.Executor
		g.AllowedModels = cfg.AllowedModels
	}
	return g
}

// Generate runs req through the pipeline.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	start := g.clock()
	trace := Trace{
		Mode:   ParseMode(req.Mode),
		Format: ailink.ParseOutputFormat(req.OutputFormat),
	}

	result, err := g.run(ctx, req, &trace)
	elapsed := g.clock().Sub(start)

	status := store.StatusOK
	if err != nil {
		status = store.StatusError
	}
	metrics.RecordGeneration(string(trace.Format), string(trace.Mode), status, elapsed)
	g.logOutcome(req, trace, elapsed, err)
	if !errors.Is(err, ErrPromptRequired) {
		g.record(ctx, req, trace, status, elapsed, err)
	}
	return result, err
}

func (g *Generator) run(ctx context.Context, req Request, trace *Trace) (*Result, error) {
	userPrompt := strings.TrimSpace(req.Prompt)
	if userPrompt == "" {
		return nil, ErrPromptRequired
	}
	if g.Assistant == nil {
		return nil, errors.New("pipeline assistant not configured")
	}

	model := strings.TrimSpace(req.Model)
	tools := ailink.ToolsFromToggles(req.Tools)
	execPrompt := userPrompt

	runPlanner := false
	switch trace.Mode {
	case ModePlan:
		runPlanner = true
	case ModeAuto:
		triage, err := g.Assistant.Triage(ctx, userPrompt)
		if err != nil {
			return nil, err
		}
		trace.Complexity = triage.Complexity
		runPlanner = triage.Complexity != ailink.ComplexitySimple
	}

	if runPlanner {
		plan, err := g.Assistant.Plan(ctx, ailink.PlanRequest{Prompt: userPrompt, Format: trace.Format})
		if err != nil {
			return nil, err
		}
		trace.Planned = true
		model = plan.FinalModel
		tools = plan.FinalTools
		execPrompt = plan.OptimizedPrompt
		trace.ReferenceURL = plan.ReferenceURL()
	}

	if overrides := req.UserOverrides; overrides != nil {
		if strings.TrimSpace(overrides.Model) != "" {
			model = strings.TrimSpace(overrides.Model)
		}
		if overrides.Tools != nil {
			tools = overrides.Tools
		}
	}
	if !ailink.ModelAllowed(model, g.AllowedModels) {
		model = g.DefaultModel
	}
	trace.Model = model

	executed, err := g.Assistant.Execute(ctx, ailink.ExecuteRequest{
		Prompt:       execPrompt,
		Model:        model,
		Tools:        tools,
		Format:       trace.Format,
		ReferenceURL: trace.ReferenceURL,
	})
	if err != nil {
		return nil, err
	}
	trace.Tools = executed.Tools
	if executed.Model != "" {
		trace.Model = executed.Model
	}

	result := &Result{Trace: *trace}
	if trace.Format != ailink.FormatPowerpoint {
		result.Text = executed.Content
		return result, nil
	}

	spec, err := deck.Decode([]byte(executed.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeckInvalid, err)
	}
	if g.Decks == nil {
		return nil, errors.New("deck builder not configured")
	}
	document, err := g.Decks.Build(ctx, spec)
	if err != nil {
		return nil, &deckBuildError{err: err}
	}
	result.Document = document
	result.FileName = deck.FileName
	result.MIMEType = deck.MIMEType
	return result, nil
}

func (g *Generator) logOutcome(req Request, trace Trace, elapsed time.Duration, err error) {
	logger := observability.Logger()
	if logger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("request_id", req.RequestID),
		zap.String("mode", string(trace.Mode)),
		zap.String("complexity", string(trace.Complexity)),
		zap.Bool("planned", trace.Planned),
		zap.String("model", trace.Model),
		zap.Int("tools", len(trace.Tools)),
		zap.String("output_format", string(trace.Format)),
		zap.Duration("duration", elapsed),
	}
	if err != nil {
		logger.Warn("generation failed", append(fields, zap.String("error_code", ErrorCode(err)), zap.Error(err))...)
		return
	}
	logger.Info("generation completed", fields...)
}

func (g *Generator) record(ctx context.Context, req Request, trace Trace, status string, elapsed time.Duration, err error) {
	if g.History == nil {
		return
	}
	row := store.Generation{
		RequestID:    req.RequestID,
		Mode:         string(trace.Mode),
		OutputFormat: string(trace.Format),
		Complexity:   string(trace.Complexity),
		Model:        trace.Model,
		Tools:        trace.Tools,
		PromptChars:  utf8.RuneCountInString(req.Prompt),
		Status:       status,
		Duration:     elapsed,
		CreatedAt:    g.clock(),
	}
	row.ErrorCode = ErrorCode(err)

	// Recorded even when the request context is already cancelled.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, recordErr := g.History.RecordGeneration(recordCtx, row); recordErr != nil {
		if logger := observability.Logger(); logger != nil {
			logger.Warn("failed to record generation history",
				zap.String("request_id", req.RequestID),
				zap.Error(recordErr))
		}
	}
}

func (g *Generator) clock() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now()
}
