package prompt

import (
	"embed"
	"fmt"
	"strings"
)

// Built-in prompt slugs.
const (
	SlugTriage             = "triage"
	SlugPlanner            = "planner"
	SlugExecutorText       = "executor-text"
	SlugExecutorCode       = "executor-code"
	SlugExecutorPowerpoint = "executor-powerpoint"
)

// RequiredSlugs must resolve in every registry used for generation.
var RequiredSlugs = []string{SlugTriage, SlugPlanner, SlugExecutorText, SlugExecutorCode, SlugExecutorPowerpoint}

//go:embed prompts/*.md
var defaultPromptsFS embed.FS

// LoadDefaults loads the embedded prompt set.
func LoadDefaults() ([]*Prompt, error) {
	entries, err := defaultPromptsFS.ReadDir("prompts")
	if err != nil {
		return nil, fmt.Errorf("read embedded prompts: %w", err)
	}
	results := make([]*Prompt, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := defaultPromptsFS.ReadFile("prompts/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read embedded prompt %s: %w", entry.Name(), err)
		}
		prompt, err := Load("embedded:"+entry.Name(), data)
		if err != nil {
			return nil, err
		}
		results = append(results, prompt)
	}
	return results, nil
}

// DefaultRegistry builds a registry from embedded prompts.
func DefaultRegistry() (*InMemoryRegistry, error) {
	prompts, err := LoadDefaults()
	if err != nil {
		return nil, err
	}
	return NewRegistry(prompts)
}

// BuildRegistry loads the embedded prompts and overlays any found in dir.
// Every required slug must resolve afterwards.
func BuildRegistry(dir string) (*InMemoryRegistry, error) {
	reg, err := DefaultRegistry()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dir) != "" {
		overrides, err := LoadFromDir(dir)
		if err != nil {
			return nil, err
		}
		if err := reg.Overlay(overrides); err != nil {
			return nil, err
		}
	}
	for _, slug := range RequiredSlugs {
		if _, err := reg.Get(slug); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
