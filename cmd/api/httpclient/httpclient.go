package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"cgm-ai-eval/cmd/api/trace"
	"cgm-ai-eval/internal/logger"
)

// Config 는 아웃바운드 HTTP 클라이언트 공통 설정이다.
type Config struct {
	// Timeout 이 0 이면 기본값 2분을 사용한다. LLM 응답은 수십 초가 걸릴 수 있다.
	Timeout time.Duration

	// LogBody 가 true 일 때만 요청 바디 스니펫을 debug 로그에 남긴다.
	// 프롬프트에는 환자 데이터가 포함되므로 기본값은 false 다.
	LogBody bool

	// Transport 가 nil 이면 http.DefaultTransport 를 사용한다.
	Transport http.RoundTripper
}

// loggingRoundTripper 는 모든 아웃바운드 호출에 X-Request-Id/X-Span-Id 를 붙이고
// 결과를 구조화 로그로 남긴다. Authorization 헤더 값은 절대 기록하지 않는다.
type loggingRoundTripper struct {
	inner   http.RoundTripper
	logBody bool
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID, spanID := trace.NextSpanID(req.Context())
	// RoundTripper 는 원본 요청을 수정하면 안 되므로 복제본에 헤더를 세팅한다.
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("X-Span-Id", spanID)

	var bodySnippet string
	if l.logBody && req.Body != nil {
		if bodyBytes, err := io.ReadAll(req.Body); err == nil {
			const maxBodyLog = 1024
			if len(bodyBytes) > maxBodyLog {
				bodySnippet = string(bodyBytes[:maxBodyLog])
			} else {
				bodySnippet = string(bodyBytes)
			}
			// 실제 전송을 위해 Body 를 복원한다.
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	resp, err := l.inner.RoundTrip(req)
	fields := logger.Fields{
		"method":     req.Method,
		"host":       req.URL.Host,
		"path":       req.URL.Path,
		"duration":   time.Since(start).String(),
		"request_id": requestID,
		"span_id":    spanID,
	}
	if bodySnippet != "" {
		fields["body"] = bodySnippet
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.ErrorWithFields("httpclient request failed", fields)
		return nil, err
	}

	fields["status"] = resp.StatusCode
	logger.DebugWithFields("httpclient request success", fields)
	return resp, nil
}

// New 는 주어진 설정으로 로깅 트랜스포트가 적용된 http.Client 를 생성한다.
func New(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingRoundTripper{inner: transport, logBody: cfg.LogBody},
	}
}

// NewDefault 는 기본 설정(Timeout 2분, 바디 로깅 없음)의 http.Client 를 생성한다.
func NewDefault() *http.Client {
	return New(Config{})
}
