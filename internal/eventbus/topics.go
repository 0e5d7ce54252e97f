package eventbus

// TopicAIEvents 는 평가 완료 이벤트가 흐르는 토픽이다.
var TopicAIEvents = NewTopic("cgm-ai-eval.ai.events")

var AllTopics = []Topic{
	TopicAIEvents,
}
