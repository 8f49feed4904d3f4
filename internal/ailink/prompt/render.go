package prompt

import (
	"fmt"
	"strings"
)

// Render produces the system and user messages for vars. Templates use
// {{name}} substitution and {{#if name}}...{{else}}...{{/if}} blocks.
func (p *Prompt) Render(vars map[string]string) (string, string, error) {
	if p == nil {
		return "", "", fmt.Errorf("prompt is required")
	}
	for _, name := range p.Config.Input.RequiredVariables {
		if strings.TrimSpace(vars[name]) == "" {
			return "", "", fmt.Errorf("prompt %s: missing required variable %q", p.Config.Slug, name)
		}
	}

	system := applyVars(applyConditionals(p.Config.SystemTemplate, vars), vars)
	user := p.Config.UserTemplate
	if strings.TrimSpace(user) == "" {
		user = "{{prompt}}"
	}
	user = applyVars(applyConditionals(user, vars), vars)

	if strings.TrimSpace(system) == "" {
		return "", "", fmt.Errorf("prompt %s: system prompt is empty", p.Config.Slug)
	}
	return strings.TrimSpace(system), strings.TrimSpace(user), nil
}

func applyVars(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// applyConditionals resolves {{#if var}}a{{else}}b{{/if}} blocks, innermost
// nesting handled by tag depth.
func applyConditionals(template string, vars map[string]string) string {
	result := template
	for {
		start := strings.Index(result, "{{#if")
		if start == -1 {
			return result
		}
		tagEnd := strings.Index(result[start:], "}}")
		if tagEnd == -1 {
			return result
		}
		tagEnd += start

		name := strings.TrimSpace(result[start+len("{{#if") : tagEnd])
		blockStart := tagEnd + 2

		elseStart, elseEnd, endStart, endEnd := findBlockEnd(result, blockStart)
		if endStart == -1 {
			return result
		}

		body, fallback := result[blockStart:endStart], ""
		if elseStart != -1 {
			body, fallback = result[blockStart:elseStart], result[elseEnd:endStart]
		}

		replacement := fallback
		if strings.TrimSpace(vars[name]) != "" {
			replacement = body
		}
		result = result[:start] + replacement + result[endEnd:]
	}
}

func findBlockEnd(input string, pos int) (elseStart, elseEnd, endStart, endEnd int) {
	elseStart, elseEnd = -1, -1
	depth := 0
	for {
		open := strings.Index(input[pos:], "{{")
		if open == -1 {
			return -1, -1, -1, -1
		}
		open += pos
		closing := strings.Index(input[open:], "}}")
		if closing == -1 {
			return -1, -1, -1, -1
		}
		closing += open

		tag := strings.TrimSpace(input[open+2 : closing])
		switch {
		case tag == "#if" || strings.HasPrefix(tag, "#if "):
			depth++
		case tag == "/if":
			if depth == 0 {
				return elseStart, elseEnd, open, closing + 2
			}
			depth--
		case tag == "else" && depth == 0 && elseStart == -1:
			elseStart, elseEnd = open, closing+2
		}
		pos = closing + 2
	}
}
