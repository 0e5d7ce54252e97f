package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"cgm-ai-eval/apperrors"
	"cgm-ai-eval/cmd/api/httpclient"
)

const (
	maxResponseBody = 5 * 1024 * 1024
	maxErrorDetail  = 2048
)

// Request 는 한 번의 평가 호출에 필요한 값이다.
type Request struct {
	Endpoint     string
	APIKey       string
	Model        string
	SystemPrompt string
	UserPrompt   string
}

type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Result 는 응답 형태와 무관하게 정규화된 결과다.
type Result struct {
	Content string
	// Shape 는 content 를 뽑아낸 extractor 이름이다 (choices, html_content, string, text).
	Shape string
	Usage *Usage
}

// Sender 는 평가 서비스가 의존하는 게이트웨이 추상화다.
type Sender interface {
	Send(ctx context.Context, req Request) (Result, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// Client 는 OpenAI 호환 chat completions 엔드포인트로 요청을 보낸다.
// 재시도는 하지 않는다. 재시도 여부는 호출자가 결정한다.
type Client struct {
	http *http.Client
}

func New(timeout time.Duration) *Client {
	return NewWithHTTPClient(httpclient.New(httpclient.Config{Timeout: timeout}))
}

func NewWithHTTPClient(c *http.Client) *Client {
	if c == nil {
		c = httpclient.NewDefault()
	}
	return &Client{http: c}
}

func (c *Client) Send(ctx context.Context, req Request) (Result, error) {
	const op = "llm.send"

	buf, err := json.Marshal(chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
	})
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.KindParse, op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, bytes.NewReader(buf))
	if err != nil {
		return Result{}, apperrors.Configuration(op, "invalid endpoint: "+err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.KindNetwork, op, redact(err, req.APIKey))
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if readErr != nil {
		return Result{}, apperrors.Wrap(apperrors.KindNetwork, op, fmt.Errorf("read response: %w", readErr))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := truncate(string(body), maxErrorDetail)
		if req.APIKey != "" {
			detail = strings.ReplaceAll(detail, req.APIKey, "[redacted]")
		}
		return Result{}, &apperrors.Error{
			Kind:       apperrors.KindUpstream,
			Op:         op,
			Message:    fmt.Sprintf("status=%d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Body:       detail,
		}
	}

	return Normalize(body, resp.Header.Get("Content-Type"))
}

// Normalize 는 응답 바디를 Result 로 변환한다.
//
// JSON 으로 보이는 바디(Content-Type 이 json 이거나 '{' '[' '"' 로 시작)는 파싱 후
// extractors 를 순서대로 적용하고, 그 외의 텍스트 바디는 그대로 content 로 사용한다.
func Normalize(body []byte, contentType string) (Result, error) {
	const op = "llm.normalize"

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Result{}, apperrors.New(apperrors.KindEmptyResponse, op, "response body is empty")
	}

	if !looksLikeJSON(trimmed, contentType) {
		return Result{Content: string(trimmed), Shape: "text"}, nil
	}

	var doc any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Result{}, apperrors.Wrap(apperrors.KindParse, op, err)
	}

	for _, ex := range extractors {
		if content, ok := ex.extract(doc); ok {
			return Result{Content: content, Shape: ex.name, Usage: usageFrom(doc)}, nil
		}
	}
	return Result{}, apperrors.New(apperrors.KindEmptyResponse, op, "no content in response")
}

func looksLikeJSON(b []byte, contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "json") {
		return true
	}
	switch b[0] {
	case '{', '[', '"':
		return true
	}
	return false
}

// truncate 는 max 바이트 이하로 자르되 멀티바이트 문자를 쪼개지 않는다.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// redact 는 전송 오류 메시지에 API 키가 섞여 나가지 않도록 한다.
func redact(err error, apiKey string) error {
	if apiKey == "" || !strings.Contains(err.Error(), apiKey) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), apiKey, "[redacted]"))
}
