package llmclient

import (
	"fmt"
	"time"

	"cgm-ai-eval/cmd/api/httpclient"
)

const (
	ProviderChat   = "chat"
	ProviderGemini = "gemini"
)

// NewSender 는 llm.provider 설정값에 맞는 Sender 를 생성한다. 빈 값은 chat 이다.
func NewSender(provider string, timeout time.Duration) (Sender, error) {
	switch provider {
	case "", ProviderChat:
		return New(timeout), nil
	case ProviderGemini:
		return NewGeminiClient(httpclient.New(httpclient.Config{Timeout: timeout})), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
