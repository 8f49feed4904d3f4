package ailink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterTools(t *testing.T) {
	allowed := []string{"browser_search", "code_interpreter", "visit_website"}

	tests := []struct {
		name      string
		requested []string
		want      []string
	}{
		{"nil", nil, []string{}},
		{"keeps order", []string{"visit_website", "browser_search"}, []string{"visit_website", "browser_search"}},
		{"drops unknown", []string{"shell", "code_interpreter"}, []string{"code_interpreter"}},
		{"aliases", []string{"websuche", "web_search"}, []string{"browser_search"}},
		{"case insensitive", []string{"Code_Interpreter"}, []string{"code_interpreter"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterTools(tt.requested, allowed)
			assert.Equal(t, tt.want, got)
			for _, tool := range got {
				assert.Contains(t, allowed, tool)
			}
		})
	}
}

func TestFilterToolsEmptyAllowList(t *testing.T) {
	assert.Empty(t, FilterTools([]string{"browser_search"}, nil))
}

func TestToolsFromToggles(t *testing.T) {
	got := ToolsFromToggles(map[string]bool{
		"websuche":         true,
		"code_interpreter": true,
		"visit_website":    false,
	})
	assert.Equal(t, []string{"code_interpreter", "browser_search"}, got)
	assert.Empty(t, ToolsFromToggles(nil))
}

func TestModelAllowed(t *testing.T) {
	allowed := []string{"groq/compound"}
	assert.True(t, ModelAllowed("groq/compound", allowed))
	assert.True(t, ModelAllowed("GROQ/compound", allowed))
	assert.False(t, ModelAllowed("other", allowed))
	assert.False(t, ModelAllowed("", allowed))
	assert.True(t, ModelAllowed("anything", nil))
}

func TestParseOutputFormat(t *testing.T) {
	assert.Equal(t, FormatText, ParseOutputFormat(""))
	assert.Equal(t, FormatText, ParseOutputFormat("markdown"))
	assert.Equal(t, FormatCode, ParseOutputFormat("Code"))
	assert.Equal(t, FormatPowerpoint, ParseOutputFormat("powerpoint"))
	assert.Equal(t, FormatPowerpoint, ParseOutputFormat("pptx"))
	assert.Equal(t, FormatPowerpoint, ParseOutputFormat("presentation"))
}

func TestParseComplexity(t *testing.T) {
	assert.Equal(t, ComplexitySimple, ParseComplexity(" simple "))
	assert.Equal(t, ComplexityComplex, ParseComplexity("complex"))
	assert.Equal(t, ComplexityComplex, ParseComplexity(""))
}
