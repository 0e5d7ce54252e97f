package llmclient

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"cgm-ai-eval/apperrors"
)

// GeminiClient 는 llm.provider=gemini 일 때 사용하는 Sender 구현이다.
// Request.Endpoint 가 비어 있지 않으면 BaseURL 로 사용한다.
type GeminiClient struct {
	http *http.Client
}

func NewGeminiClient(httpClient *http.Client) *GeminiClient {
	return &GeminiClient{http: httpClient}
}

func (g *GeminiClient) Send(ctx context.Context, req Request) (Result, error) {
	const op = "llm.gemini.send"

	cc := &genai.ClientConfig{
		APIKey:     req.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.http,
	}
	if req.Endpoint != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: req.Endpoint}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return Result{}, apperrors.Configuration(op, redact(err, req.APIKey).Error())
	}

	resp, err := client.Models.GenerateContent(
		ctx,
		req.Model,
		genai.Text(req.UserPrompt),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}},
		},
	)
	if err != nil {
		return Result{}, mapGeminiError(op, err, req.APIKey)
	}
	if resp == nil {
		return Result{}, apperrors.New(apperrors.KindEmptyResponse, op, "nil response")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Result{}, apperrors.New(apperrors.KindEmptyResponse, op, "no content in response")
	}

	out := Result{Content: text, Shape: "gemini"}
	if m := resp.UsageMetadata; m != nil {
		out.Usage = &Usage{
			PromptTokens:     int64(m.PromptTokenCount),
			CompletionTokens: int64(m.CandidatesTokenCount),
			TotalTokens:      int64(m.TotalTokenCount),
		}
	}
	return out, nil
}

func mapGeminiError(op string, err error, apiKey string) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return upstreamFromGemini(op, apiErr, apiKey)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return upstreamFromGemini(op, *apiErrPtr, apiKey)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.KindNetwork, op, err)
	}
	return apperrors.Wrap(apperrors.KindNetwork, op, redact(err, apiKey))
}

func upstreamFromGemini(op string, e genai.APIError, apiKey string) error {
	body := truncate(e.Message, maxErrorDetail)
	if apiKey != "" {
		body = strings.ReplaceAll(body, apiKey, "[redacted]")
	}
	return &apperrors.Error{
		Kind:       apperrors.KindUpstream,
		Op:         op,
		Message:    e.Status,
		StatusCode: e.Code,
		Body:       body,
	}
}
