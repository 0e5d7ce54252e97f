package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"cgm-ai-eval/internal/logger"
)

// KafkaEventBus 는 confluent-kafka-go 기반 EventBus 구현체다.
type KafkaEventBus struct {
	Producer *kafka.Producer
	Brokers  string
}

func NewKafkaEventBus(brokers string) (*KafkaEventBus, error) {
	producerCfg := &kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
		"retries":           5,
	}
	if maxBytes := positiveIntFromEnv("KAFKA_MESSAGE_MAX_BYTES"); maxBytes > 0 {
		(*producerCfg)["message.max.bytes"] = maxBytes
	}

	p, err := kafka.NewProducer(producerCfg)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	// delivery report 이외의 producer 이벤트 처리
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logger.ErrorWithFields("kafka delivery failed", logger.Fields{
						"topic_partition": ev.TopicPartition.String(),
						"error":           ev.TopicPartition.Error.Error(),
					})
				}
			case kafka.Error:
				logger.ErrorWithFields("kafka error", logger.Fields{"error": ev.Error()})
			}
		}
	}()

	return &KafkaEventBus{Producer: p, Brokers: brokers}, nil
}

func (k *KafkaEventBus) Close() {
	if k.Producer == nil {
		return
	}
	if remaining := k.Producer.Flush(5000); remaining > 0 {
		logger.WarnWithFields("kafka producer closed with unflushed messages", logger.Fields{"remaining": remaining})
	}
	k.Producer.Close()
	logger.Log.Info("kafka producer closed")
}

// Publish 는 delivery report 를 받을 때까지(또는 ctx 종료까지) 기다린다.
func (k *KafkaEventBus) Publish(ctx context.Context, topic string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = k.Producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          data,
		Key:            []byte(event.ID),
		Headers:        []kafka.Header{{Key: "event_type", Value: []byte(event.Type)}},
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}

	select {
	case ev := <-deliveryChan:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %T", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("deliver to %s: %w", topic, m.TopicPartition.Error)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// routeFailure 는 handler 실패 이벤트가 다음에 갈 토픽을 결정한다.
// 재시도 한도 안이면 재시도 토픽(Retry 증가), 넘으면 DLQ 다.
func routeFailure(topic Topic, evt Event, handlerErr error) (string, Event) {
	evt.LastError = handlerErr.Error()
	limit := evt.MaxRetry
	if limit <= 0 || limit > len(RetryDelays) {
		limit = len(RetryDelays)
	}
	next := evt.Retry + 1
	if next > limit {
		return topic.DLQ(), evt
	}
	retryTopic, err := topic.GetRetryTopic(next)
	if err != nil {
		return topic.DLQ(), evt
	}
	evt.Retry = next
	return retryTopic, evt
}

func (k *KafkaEventBus) newConsumer(groupID string) (*kafka.Consumer, error) {
	consumerCfg := &kafka.ConfigMap{
		"bootstrap.servers":             k.Brokers,
		"group.id":                      groupID,
		"auto.offset.reset":             "earliest",
		"enable.auto.commit":            false,
		"partition.assignment.strategy": "range",
	}
	if maxPoll := positiveIntFromEnv("KAFKA_MAX_POLL_INTERVAL_MS"); maxPoll > 0 {
		(*consumerCfg)["max.poll.interval.ms"] = maxPoll
	}
	return kafka.NewConsumer(consumerCfg)
}

func (k *KafkaEventBus) Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("create kafka consumer: %w", err)
	}
	defer c.Close()

	if err := c.SubscribeTopics([]string{topic.Base()}, nil); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic.Base(), err)
	}
	logger.InfoWithFields("consumer started", logger.Fields{"group_id": groupID, "topic": topic.Base()})

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("consumer stopping")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok && kerr.IsFatal() {
				return fmt.Errorf("consumer fatal error: %w", err)
			}
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.ErrorWithFields("invalid event payload, skipping", logger.Fields{
				"topic": *msg.TopicPartition.Topic,
				"error": err.Error(),
			})
			_, _ = c.CommitMessage(msg)
			continue
		}

		fields := logger.Fields{"event_id": evt.ID, "event_type": evt.Type, "retry": evt.Retry}
		logger.DebugWithFields("event received", fields)

		if herr := handler(ctx, evt); herr != nil {
			dest, routed := routeFailure(topic, evt, herr)
			fields["error"] = herr.Error()
			fields["destination"] = dest
			logger.WarnWithFields("event handling failed", fields)
			if perr := k.Publish(ctx, dest, routed); perr != nil {
				fields["publish_error"] = perr.Error()
				logger.ErrorWithFields("failed to reschedule event, offset not committed", fields)
				continue
			}
		}

		if _, err := c.CommitMessage(msg); err != nil {
			logger.ErrorWithFields("commit failed", logger.Fields{"error": err.Error()})
		}
	}
}

func (k *KafkaEventBus) StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error {
	c, err := k.newConsumer(groupID)
	if err != nil {
		return fmt.Errorf("create retry consumer: %w", err)
	}
	defer c.Close()

	retryTopics := topic.GetRetryTopics()
	if err := c.SubscribeTopics(retryTopics, nil); err != nil {
		return fmt.Errorf("subscribe retry topics: %w", err)
	}
	logger.InfoWithFields("retry reinjector started", logger.Fields{
		"group_id": groupID,
		"topics":   strings.Join(retryTopics, ","),
	})

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("retry reinjector stopping")
			return ctx.Err()
		default:
		}

		msg, err := c.ReadMessage(100 * time.Millisecond)
		if err != nil {
			if kerr, ok := err.(kafka.Error); ok {
				if kerr.Code() == kafka.ErrTimedOut {
					continue
				}
				if kerr.IsFatal() {
					return fmt.Errorf("retry reinjector fatal error: %w", err)
				}
			}
			logger.ErrorWithFields("retry reinjector read failed", logger.Fields{"error": err.Error()})
			time.Sleep(500 * time.Millisecond)
			continue
		}

		topicName := *msg.TopicPartition.Topic
		delay, ok := ParseRetryDelayFromTopicName(topicName)
		if !ok {
			logger.ErrorWithFields("unparseable retry topic, skipping", logger.Fields{"topic": topicName})
			_, _ = c.CommitMessage(msg)
			continue
		}

		// 아직 지연 시간이 남았으면 짧게 대기한 뒤 같은 오프셋으로 seek 해서 다시 읽는다.
		if wait := time.Until(msg.Timestamp.Add(delay)); wait > 0 {
			time.Sleep(min(max(wait, 50*time.Millisecond), 500*time.Millisecond))
			if err := c.Seek(msg.TopicPartition, 1000); err != nil {
				logger.ErrorWithFields("retry reinjector seek failed", logger.Fields{"error": err.Error()})
			}
			continue
		}

		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			logger.ErrorWithFields("invalid retry payload, skipping", logger.Fields{"topic": topicName, "error": err.Error()})
			_, _ = c.CommitMessage(msg)
			continue
		}

		fields := logger.Fields{"event_id": evt.ID, "from": topicName, "to": topic.Base(), "retry": evt.Retry}
		if err := k.Publish(ctx, topic.Base(), evt); err != nil {
			fields["error"] = err.Error()
			logger.ErrorWithFields("reinject failed, offset not committed", fields)
			continue
		}
		logger.InfoWithFields("event reinjected", fields)

		if _, err := c.CommitMessage(msg); err != nil {
			logger.ErrorWithFields("commit after reinject failed", logger.Fields{"error": err.Error()})
		}
	}
}

// positiveIntFromEnv 는 비어 있거나 파싱 실패, 0 이하일 때 0 을 반환해 라이브러리 기본값을 쓰게 한다.
func positiveIntFromEnv(key string) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		logger.WarnWithFields("ignoring invalid kafka env value", logger.Fields{"key": key, "value": raw})
		return 0
	}
	return v
}
