package llmclient

// extractor pulls the generated text out of a decoded response body.
// ok=false means this shape does not apply.
type extractor struct {
	name    string
	extract func(doc any) (string, bool)
}

// extractors are tried in order; the first match wins. Supporting a new
// provider response shape means appending one entry.
var extractors = []extractor{
	{name: "choices", extract: fromChoices},
	{name: "html_content", extract: fromHTMLContent},
	{name: "string", extract: fromString},
}

// choices[0].message.content (OpenAI-compatible chat completions)
func fromChoices(doc any) (string, bool) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", false
	}
	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", false
	}
	first, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}
	msg, ok := first["message"].(map[string]any)
	if !ok {
		return "", false
	}
	return nonEmptyString(msg["content"])
}

// html_content (proxies that already render the evaluation)
func fromHTMLContent(doc any) (string, bool) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return "", false
	}
	return nonEmptyString(obj["html_content"])
}

// a JSON string body
func fromString(doc any) (string, bool) {
	return nonEmptyString(doc)
}

func nonEmptyString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// usageFrom reads the OpenAI-style usage block when present.
func usageFrom(doc any) *Usage {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	u, ok := obj["usage"].(map[string]any)
	if !ok {
		return nil
	}
	out := &Usage{
		PromptTokens:     toInt64(u["prompt_tokens"]),
		CompletionTokens: toInt64(u["completion_tokens"]),
		TotalTokens:      toInt64(u["total_tokens"]),
	}
	if out.TotalTokens == 0 {
		out.TotalTokens = out.PromptTokens + out.CompletionTokens
	}
	return out
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
