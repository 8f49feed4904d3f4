package ailink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/schema"
	"go.uber.org/zap"

	"github.com/promptdeck/promptdeck/internal/ailink/content"
	"github.com/promptdeck/promptdeck/internal/ailink/driver"
	"github.com/promptdeck/promptdeck/internal/ailink/prompt"
	"github.com/promptdeck/promptdeck/internal/metrics"
	"github.com/promptdeck/promptdeck/internal/observability"
)

// Service runs the triage, planner and executor calls.
type Service struct {
	Providers *Providers
	Prompts   prompt.Registry
}

// NewService wires a service from providers and prompts.
func NewService(providers *Providers, prompts prompt.Registry) *Service {
	return &Service{Providers: providers, Prompts: prompts}
}

// ExecutorSlug returns the executor prompt slug for format.
func ExecutorSlug(format OutputFormat) string {
	switch format {
	case FormatCode:
		return prompt.SlugExecutorCode
	case FormatPowerpoint:
		return prompt.SlugExecutorPowerpoint
	default:
		return prompt.SlugExecutorText
	}
}

// Triage classifies userPrompt as simple or complex.
func (s *Service) Triage(ctx context.Context, userPrompt string) (*TriageResult, error) {
	reply, err := s.call(ctx, callSpec{
		role: RoleTriage,
		slug: prompt.SlugTriage,
		vars: map[string]string{"prompt": userPrompt},
	})
	if err != nil {
		return nil, err
	}

	var decoded struct {
		Complexity string `json:"complexity"`
		Reason     string `json:"reason"`
	}
	if err := decodeReply(reply, &decoded); err != nil {
		return nil, err
	}

	result := &TriageResult{
		Complexity: ParseComplexity(decoded.Complexity),
		Reason:     strings.TrimSpace(decoded.Reason),
		Model:      reply.model,
	}
	metrics.RecordTriage(string(result.Complexity))
	return result, nil
}

// Plan asks the planner for a model, tools and a rewritten prompt, then
// normalizes the reply against the allow-lists.
func (s *Service) Plan(ctx context.Context, req PlanRequest) (*Plan, error) {
	cfg := s.Providers.Config()
	format := req.Format
	if format == "" {
		format = FormatText
	}

	reply, err := s.call(ctx, callSpec{
		role: RolePlanner,
		slug: prompt.SlugPlanner,
		vars: map[string]string{
			"prompt":         req.Prompt,
			"allowed_models": strings.Join(cfg.AllowedModels, ", "),
			"allowed_tools":  strings.Join(cfg.AllowedTools, ", "),
			"default_model":  cfg.Models.Executor,
			"output_format":  string(format),
		},
	})
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := decodeReply(reply, &plan); err != nil {
		return nil, err
	}

	normalized := NormalizePlan(plan, req.Prompt, cfg)
	return &normalized, nil
}

// NormalizePlan applies the model and tool allow-lists and fills blanks.
func NormalizePlan(plan Plan, originalPrompt string, cfg Config) Plan {
	out := Plan{
		FinalModel:      strings.TrimSpace(plan.FinalModel),
		FinalTools:      FilterTools(plan.FinalTools, cfg.AllowedTools),
		OptimizedPrompt: strings.TrimSpace(plan.OptimizedPrompt),
	}
	if !ModelAllowed(out.FinalModel, cfg.AllowedModels) {
		out.FinalModel = cfg.Models.Executor
	}
	if out.OptimizedPrompt == "" {
		out.OptimizedPrompt = originalPrompt
	}
	if url := plan.ReferenceURL(); url != "" {
		out.FinalURL = &url
	}
	return out
}

// Execute runs the executor prompt for req.Format. Tools outside the
// allow-list are dropped before the call. Powerpoint replies are validated
// against the deck schema before they are returned.
func (s *Service) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	cfg := s.Providers.Config()
	tools := FilterTools(req.Tools, cfg.AllowedTools)

	reply, err := s.call(ctx, callSpec{
		role:  RoleExecutor,
		slug:  ExecutorSlug(req.Format),
		model: req.Model,
		tools: tools,
		vars: map[string]string{
			"prompt":        req.Prompt,
			"reference_url": strings.TrimSpace(req.ReferenceURL),
		},
	})
	if err != nil {
		return nil, err
	}

	text := reply.text
	if reply.def.WantsJSON() {
		normalized, err := validateReply(reply)
		if err != nil {
			return nil, err
		}
		text = string(normalized)
	}

	return &ExecuteResult{Content: text, Model: reply.model, Tools: tools, Usage: reply.usage}, nil
}

type callSpec struct {
	role  string
	slug  string
	model string
	tools []string
	vars  map[string]string
}

type callReply struct {
	def   *prompt.Prompt
	text  string
	model string
	usage *driver.Usage
}

func (s *Service) call(ctx context.Context, spec callSpec) (*callReply, error) {
	if s == nil || s.Providers == nil {
		return nil, errors.New("ailink provider registry not configured")
	}
	if s.Prompts == nil {
		return nil, errors.New("ailink prompt registry not configured")
	}

	def, err := s.Prompts.Get(spec.slug)
	if err != nil {
		return nil, err
	}
	system, user, err := def.Render(spec.vars)
	if err != nil {
		return nil, err
	}
	resolved, err := s.Providers.Resolve(spec.role, spec.model)
	if err != nil {
		return nil, err
	}

	req := &driver.Request{
		Model: resolved.Model,
		Messages: []content.Message{
			content.Text(content.RoleSystem, system),
			content.Text(content.RoleUser, user),
		},
		Tools:      driver.ToolsFromNames(spec.tools),
		PromptSlug: def.Config.Slug,
	}
	if def.WantsJSON() {
		req.ResponseFormat = driver.JSONObject
	}

	start := time.Now()
	resp, err := resolved.Driver.Complete(ctx, req)
	elapsed := time.Since(start)
	metrics.RecordProviderCall(spec.role, resolved.Driver.Name(), err == nil, elapsed)

	logger := observability.Logger()
	if err != nil {
		if logger != nil {
			logger.Warn("model call failed",
				zap.String("role", spec.role),
				zap.String("provider", resolved.ProviderID),
				zap.String("model", resolved.Model),
				zap.Duration("duration", elapsed),
				zap.Error(err))
		}
		return nil, fmt.Errorf("%s call: %w", spec.role, err)
	}
	if logger != nil {
		logger.Debug("model call completed",
			zap.String("role", spec.role),
			zap.String("provider", resolved.ProviderID),
			zap.String("model", resolved.Model),
			zap.Int("tools", len(spec.tools)),
			zap.Duration("duration", elapsed))
	}

	return &callReply{def: def, text: resp.Text(), model: resolved.Model, usage: resp.Usage}, nil
}

// validateReply checks the reply against the prompt's response schema and
// returns the bare JSON object.
func validateReply(reply *callReply) ([]byte, error) {
	raw := extractJSONObject(reply.text)
	slug := reply.def.Config.Slug
	if !json.Valid(raw) {
		var probe any
		err := json.Unmarshal(raw, &probe)
		if err == nil {
			err = errors.New("invalid JSON")
		}
		return nil, &RawResponseError{Slug: slug, Err: fmt.Errorf("decode response: %w", err), Raw: rawMessage(reply.text)}
	}

	if len(reply.def.Config.ResponseSchema) == 0 {
		return raw, nil
	}
	schemaBytes, err := json.Marshal(reply.def.Config.ResponseSchema)
	if err != nil {
		return nil, fmt.Errorf("encode response schema: %w", err)
	}
	validator, err := schema.NewValidator(schemaBytes)
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}
	diagnostics, err := validator.ValidateJSON(raw)
	if err != nil {
		return nil, &RawResponseError{Slug: slug, Err: err, Raw: raw}
	}
	if len(diagnostics) > 0 {
		return nil, &RawResponseError{Slug: slug, Err: fmt.Errorf("response schema validation failed: %s", describeDiagnostics(diagnostics)), Raw: raw}
	}
	return raw, nil
}

// describeDiagnostics lists the located failures, falling back to the root
// message when no diagnostic carries an instance pointer.
func describeDiagnostics(diagnostics []schema.Diagnostic) string {
	const maxListed = 3
	var parts []string
	for _, d := range diagnostics {
		if d.Pointer == "" {
			continue
		}
		parts = append(parts, d.Pointer+": "+d.Message)
		if len(parts) == maxListed {
			break
		}
	}
	if len(parts) == 0 {
		return diagnostics[0].Message
	}
	return strings.Join(parts, "; ")
}

func decodeReply(reply *callReply, out any) error {
	raw, err := validateReply(reply)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &RawResponseError{Slug: reply.def.Config.Slug, Err: fmt.Errorf("decode response: %w", err), Raw: raw}
	}
	return nil
}

// extractJSONObject strips surrounding whitespace and a markdown code fence.
func extractJSONObject(text string) []byte {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if newline := strings.IndexByte(trimmed, '\n'); newline >= 0 {
			trimmed = trimmed[newline+1:]
		}
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	}
	return bytes.TrimSpace([]byte(trimmed))
}

func rawMessage(text string) json.RawMessage {
	quoted, err := json.Marshal(text)
	if err != nil {
		return nil
	}
	return quoted
}
