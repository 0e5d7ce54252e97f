package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RetryDelays 는 재시도 횟수(1-based)별 지연 시간이다.
var RetryDelays = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// Topic 은 기본 토픽 이름과 파생되는 재시도/DLQ 토픽 이름을 관리한다.
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

// DLQ 예: cgm-ai-eval.ai.events.dlq
func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// GetRetryTopics 는 모든 재시도 토픽 이름을 반환한다. 형식: <base>.retry.<n>
func (t Topic) GetRetryTopics() []string {
	topics := make([]string, len(RetryDelays))
	for i := range RetryDelays {
		topics[i] = retryTopicName(t.base, i+1)
	}
	return topics
}

// GetRetryTopic 은 다음 재시도 횟수(1-based)에 해당하는 재시도 토픽 이름을 반환한다.
func (t Topic) GetRetryTopic(retryCount int) (string, error) {
	if retryCount <= 0 || retryCount > len(RetryDelays) {
		return "", ErrMaxRetryExceeded
	}
	return retryTopicName(t.base, retryCount), nil
}

func retryTopicName(base string, n int) string {
	return fmt.Sprintf("%s.retry.%d", base, n)
}

// Event 는 Kafka 메시지 페이로드의 envelope 이다.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Retry     int             `json:"retry"`
	MaxRetry  int             `json:"max_retry"`
	LastError string          `json:"last_error,omitempty"`
}

type EventHandler func(ctx context.Context, event Event) error

// Publisher 는 발행만 필요한 쪽(API 서버)이 의존하는 최소 인터페이스다.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}

type EventBus interface {
	Publisher
	// Subscribe 는 기본 토픽을 구독하여 handler 를 실행한다. 실패 시 재시도 토픽 또는 DLQ 로 보낸다.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	// StartRetryReinjector 는 재시도 토픽을 구독하고 지연 시간이 지난 이벤트를 기본 토픽으로 재발행한다.
	StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error
	Close()
}

var ErrMaxRetryExceeded = errors.New("max retry exceeded")
