// Package renderer builds the final system/user prompts from the stored
// prompt configuration and a CGM data payload.
package renderer

import (
	"bytes"
	"encoding/json"
	"strings"

	"cgm-ai-eval/apperrors"
	"cgm-ai-eval/models"
)

// DataToken is replaced by the serialized payload in user templates.
const DataToken = "{{CGMDATA}}"

type Mode string

const (
	ModePrimary Mode = "primary"
	ModeInterim Mode = "interim"
)

// ParseMode maps an optional request value to a Mode; empty means primary.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePrimary:
		return ModePrimary, nil
	case ModeInterim:
		return ModeInterim, nil
	default:
		return "", apperrors.Validation("render.mode", "mode must be \"primary\" or \"interim\"")
	}
}

// Defaults are the deployment-level prompts used when the stored ones are empty.
type Defaults struct {
	SystemPrompt        string
	UserTemplate        string
	InterimSystemPrompt string
	InterimUserTemplate string
}

type Prompts struct {
	SystemPrompt string
	UserPrompt   string
}

// Render selects the prompt pair for mode, applies defaults and substitutes
// every DataToken in the user template with the serialized payload.
func Render(cfg models.PromptConfig, payload any, mode Mode, defaults Defaults) (Prompts, error) {
	system, template := cfg.SystemPrompt, cfg.UserPromptTemplate
	defSystem, defTemplate := defaults.SystemPrompt, defaults.UserTemplate
	if mode == ModeInterim {
		system, template = cfg.SystemInterimPrompt, cfg.UserInterimPromptTemplate
		defSystem, defTemplate = defaults.InterimSystemPrompt, defaults.InterimUserTemplate
	}

	if strings.TrimSpace(system) == "" {
		system = defSystem
	}
	if strings.TrimSpace(template) == "" {
		template = defTemplate
	}
	if strings.TrimSpace(template) == "" {
		return Prompts{}, apperrors.Configuration("render", "no user prompt template configured for "+string(mode)+" mode")
	}

	user := template
	if strings.Contains(template, DataToken) {
		data, err := Serialize(payload)
		if err != nil {
			return Prompts{}, err
		}
		user = strings.ReplaceAll(template, DataToken, data)
	}

	return Prompts{SystemPrompt: system, UserPrompt: user}, nil
}

// Serialize returns the compact JSON text of payload. Raw JSON input is
// compacted as is; other values are marshalled without HTML escaping.
func Serialize(payload any) (string, error) {
	var raw []byte
	switch p := payload.(type) {
	case nil:
		return "null", nil
	case json.RawMessage:
		raw = p
	case []byte:
		raw = p
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(payload); err != nil {
			return "", apperrors.Validation("render.serialize", err.Error())
		}
		return strings.TrimRight(buf.String(), "\n"), nil
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return "null", nil
	}
	var out bytes.Buffer
	if err := json.Compact(&out, raw); err != nil {
		return "", apperrors.Validation("render.serialize", "payload is not valid JSON: "+err.Error())
	}
	return out.String(), nil
}
