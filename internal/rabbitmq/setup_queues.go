package rabbitmq

type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

func GetLifecycleQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: "lifecycle.expired", RoutingKey: "expired"},
		// при необходимости дополнительные очереди для других воркеров
	}
}
