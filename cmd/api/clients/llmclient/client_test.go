package llmclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cgm-ai-eval/apperrors"
)

const testKey = "sk-test-secret-123"

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, New(5 * time.Second)
}

func baseRequest(endpoint string) Request {
	return Request{
		Endpoint:     endpoint,
		APIKey:       testKey,
		Model:        "gpt-4o",
		SystemPrompt: "you are a diabetes coach",
		UserPrompt:   `Data: {"a":1}`,
	}
}

func TestSend_ChatCompletionShape(t *testing.T) {
	var got chatRequest
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer "+testKey, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"<p>ok</p>"}}],
			"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`)
	})

	res, err := c.Send(context.Background(), baseRequest(srv.URL))
	require.NoError(t, err)

	assert.Equal(t, "<p>ok</p>", res.Content)
	assert.Equal(t, "choices", res.Shape)
	require.NotNil(t, res.Usage)
	assert.Equal(t, int64(15), res.Usage.TotalTokens)

	assert.Equal(t, "gpt-4o", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "you are a diabetes coach", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, `Data: {"a":1}`, got.Messages[1].Content)
}

func TestNormalize_Shapes(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		content     string
		shape       string
	}{
		{"html_content", `{"html_content":"<h1>x</h1>"}`, "application/json", "<h1>x</h1>", "html_content"},
		{"json string", `"plain result"`, "application/json", "plain result", "string"},
		{"plain text", "<div>report</div>", "text/html", "<div>report</div>", "text"},
		{"choices wins over html_content", `{"choices":[{"message":{"content":"a"}}],"html_content":"b"}`, "", "a", "choices"},
		{"empty choices falls through", `{"choices":[],"html_content":"b"}`, "", "b", "html_content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Normalize([]byte(tt.body), tt.contentType)
			require.NoError(t, err)
			assert.Equal(t, tt.content, res.Content)
			assert.Equal(t, tt.shape, res.Shape)
		})
	}
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind apperrors.Kind
	}{
		{"empty body", "   ", apperrors.KindEmptyResponse},
		{"malformed json", `{"choices": [`, apperrors.KindParse},
		{"no recognizable content", `{"id":"x","object":"chat.completion"}`, apperrors.KindEmptyResponse},
		{"empty content", `{"choices":[{"message":{"content":""}}]}`, apperrors.KindEmptyResponse},
		{"empty json string", `""`, apperrors.KindEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]byte(tt.body), "application/json")
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
		})
	}
}

func TestSend_UpstreamStatus(t *testing.T) {
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":"rate limited for key `+testKey+`"}`)
	})

	_, err := c.Send(context.Background(), baseRequest(srv.URL))
	require.Error(t, err)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.KindUpstream, appErr.Kind)
	assert.Equal(t, http.StatusTooManyRequests, appErr.StatusCode)
	assert.Contains(t, appErr.Body, "rate limited")
	assert.NotContains(t, appErr.Body, testKey)
	assert.NotContains(t, err.Error(), testKey)
}

func TestSend_UpstreamBodyTruncated(t *testing.T) {
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, strings.Repeat("x", maxErrorDetail*3))
	})

	_, err := c.Send(context.Background(), baseRequest(srv.URL))
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Body, maxErrorDetail)
}

func TestSend_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(time.Second).Send(context.Background(), baseRequest(url))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNetwork, apperrors.KindOf(err))
	assert.NotContains(t, err.Error(), testKey)
}

func TestSend_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Send(ctx, baseRequest(srv.URL))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNetwork, apperrors.KindOf(err))
}

func TestSend_InvalidEndpoint(t *testing.T) {
	_, err := New(time.Second).Send(context.Background(), baseRequest("://bad"))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConfiguration, apperrors.KindOf(err))
}

func TestUsageFrom_TotalDerived(t *testing.T) {
	var doc any
	require.NoError(t, json.Unmarshal([]byte(`{"usage":{"prompt_tokens":7,"completion_tokens":3}}`), &doc))
	u := usageFrom(doc)
	require.NotNil(t, u)
	assert.Equal(t, int64(10), u.TotalTokens)

	assert.Nil(t, usageFrom("text"))
}

func TestSend_UpstreamBodyWithoutAPIKey(t *testing.T) {
	srv, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, "oops")
	})

	req := baseRequest(srv.URL)
	req.APIKey = ""
	_, err := c.Send(context.Background(), req)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "oops", appErr.Body)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "가", truncate("가가가", 4))
	assert.Equal(t, "가가", truncate("가가가", 6))
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "", truncate("가", 2))
	assert.True(t, utf8.ValidString(truncate(strings.Repeat("혈당", maxErrorDetail), maxErrorDetail)))
}
