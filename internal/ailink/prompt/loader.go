package prompt

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/gofulmen/schema"
	"gopkg.in/yaml.v3"
)

//go:embed definition.schema.json
var definitionSchema []byte

// Load parses and validates a prompt definition. The markdown body after the
// frontmatter becomes the system template when none is set explicitly.
func Load(source string, data []byte) (*Prompt, error) {
	config, body, err := parseFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", source, err)
	}

	if strings.TrimSpace(config.SystemTemplate) == "" {
		config.SystemTemplate = strings.TrimSpace(body)
	}
	if strings.TrimSpace(config.SystemTemplate) == "" {
		return nil, fmt.Errorf("prompt %s missing system_template", source)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("validate prompt %s: %w", source, err)
	}

	return &Prompt{Config: config, Source: source}, nil
}

// LoadFromDir reads all prompt files (.md with YAML frontmatter) from a directory.
func LoadFromDir(dir string) ([]*Prompt, error) {
	entries, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("scan prompts: %w", err)
	}
	results := make([]*Prompt, 0, len(entries))
	for _, path := range entries {
		data, err := os.ReadFile(path) // #nosec G304 -- prompt directory is operator-provided
		if err != nil {
			return nil, fmt.Errorf("read prompt %s: %w", path, err)
		}
		prompt, err := Load(path, data)
		if err != nil {
			return nil, err
		}
		results = append(results, prompt)
	}
	return results, nil
}

func parseFrontmatter(data []byte) (Config, string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Config{}, "", fmt.Errorf("empty prompt")
	}

	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		front      []string
		body       []string
		inFront    bool
		headerSeen bool
	)
	for scanner.Scan() {
		line := scanner.Text()
		marker := strings.TrimSpace(line) == "---"
		switch {
		case !headerSeen && marker:
			headerSeen, inFront = true, true
		case inFront && marker:
			inFront = false
		case inFront:
			front = append(front, line)
		default:
			body = append(body, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, "", err
	}

	var cfg Config
	source := trimmed
	if headerSeen {
		source = []byte(strings.Join(front, "\n"))
	}
	if err := yaml.Unmarshal(source, &cfg); err != nil {
		return Config{}, "", fmt.Errorf("invalid frontmatter: %w", err)
	}
	if !headerSeen {
		body = nil
	}
	return cfg, strings.Join(body, "\n"), nil
}

func validateConfig(cfg Config) error {
	validator, err := schema.NewValidator(definitionSchema)
	if err != nil {
		return fmt.Errorf("compile prompt schema: %w", err)
	}

	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	diagnostics, err := validator.ValidateJSON(payload)
	if err != nil {
		return err
	}
	if len(diagnostics) > 0 {
		return fmt.Errorf("schema validation failed: %s", diagnostics[0].Message)
	}

	if len(cfg.ResponseSchema) > 0 {
		raw, err := json.Marshal(cfg.ResponseSchema)
		if err != nil {
			return fmt.Errorf("encode response schema: %w", err)
		}
		if _, err := schema.NewValidator(raw); err != nil {
			return fmt.Errorf("compile response schema: %w", err)
		}
	}
	return nil
}
