// Package messaging 通过 Kafka 发布行情入库事件
package messaging

import (
	"context"
	"fmt"

	"github.com/wyfcoding/portfoliotracker/internal/marketdata/domain"
	"github.com/wyfcoding/portfoliotracker/pkg/mq"
)

// KafkaPublisher 收盘价入库事件的 Kafka 发布器
type KafkaPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

var _ domain.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(producer *mq.KafkaProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishDailyCloseStored(ctx context.Context, event domain.DailyCloseStored) error {
	key := fmt.Sprintf("%d:%s", event.AssetID, event.Date)
	return p.producer.SendMessage(ctx, p.topic, key, event)
}

// NopPublisher 未配置 Kafka 时的空实现
type NopPublisher struct{}

var _ domain.EventPublisher = NopPublisher{}

func (NopPublisher) PublishDailyCloseStored(context.Context, domain.DailyCloseStored) error {
	return nil
}
