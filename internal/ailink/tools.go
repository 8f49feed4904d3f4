package ailink

import (
	"sort"
	"strings"
)

// toolAliases maps front-end toggle names to provider tool names.
var toolAliases = map[string]string{
	"websuche":         "browser_search",
	"web_search":       "browser_search",
	"browser_search":   "browser_search",
	"code_interpreter": "code_interpreter",
	"visit_website":    "visit_website",
}

// CanonicalTool returns the provider tool name for a toggle or tool name.
func CanonicalTool(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := toolAliases[key]; ok {
		return alias
	}
	return key
}

// ToolsFromToggles returns canonical names of the enabled toggles, ordered
// by toggle name.
func ToolsFromToggles(toggles map[string]bool) []string {
	names := make([]string, 0, len(toggles))
	for name, enabled := range toggles {
		if enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	tools := make([]string, 0, len(names))
	for _, name := range names {
		tools = append(tools, CanonicalTool(name))
	}
	return tools
}

// FilterTools keeps requested tools present in allowed, canonicalized,
// de-duplicated and in request order. Membership is case-insensitive.
func FilterTools(requested, allowed []string) []string {
	permitted := make(map[string]string, len(allowed))
	for _, name := range allowed {
		key := strings.ToLower(strings.TrimSpace(name))
		if key != "" {
			permitted[key] = strings.TrimSpace(name)
		}
	}

	result := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, name := range requested {
		key := CanonicalTool(name)
		value, ok := permitted[key]
		if !ok || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, value)
	}
	return result
}

// ModelAllowed reports whether model is in allowed. An empty allow-list
// permits any non-empty model.
func ModelAllowed(model string, allowed []string) bool {
	model = strings.TrimSpace(model)
	if model == "" {
		return false
	}
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if strings.EqualFold(strings.TrimSpace(candidate), model) {
			return true
		}
	}
	return false
}
