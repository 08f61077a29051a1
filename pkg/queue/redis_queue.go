// Package queue 支付成功事件的 Redis 队列
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"payugw/pkg/config"
	"payugw/pkg/redis"
)

// PaymentEvent 权益发放成功后投递的领域事件。
// 消费侧用它做回执通知，不回写对账数据。
type PaymentEvent struct {
	PaymentID   uint64    `json:"payment_id"`
	Txnid       string    `json:"txnid"`
	Mihpayid    string    `json:"mihpayid"`
	UserID      uint64    `json:"user_id"`
	Component   string    `json:"component"`
	PaymentArea string    `json:"payment_area"`
	ItemID      uint64    `json:"item_id"`
	ProductName string    `json:"product_name"`
	Amount      string    `json:"amount"`
	Currency    string    `json:"currency"`
	Email       string    `json:"email"`
	Firstname   string    `json:"firstname"`
	AcceptedAt  time.Time `json:"accepted_at"`
}

// EventKey 事件在指标统计里的标识
func (e *PaymentEvent) EventKey() EventID {
	return EventID(e.Txnid)
}

// QueueService Redis 队列服务
type QueueService struct {
	client      *redis.RedisClient
	prefix      string
	rateLimiter *rate.Limiter
	metrics     *QueueMetrics
}

// NewQueueService 创建队列服务实例
func NewQueueService() *QueueService {
	rateLimit := config.GetInt("queue.rate_limit", 1000)
	burst := config.GetInt("queue.rate_burst", rateLimit)

	return &QueueService{
		client:      redis.GetRedis(redis.QueueDB),
		prefix:      config.GetString("redis.queue_prefix", "payugw:queue"),
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), burst),
		metrics:     NewQueueMetrics(),
	}
}

// PushEvent 将事件推入队列
func (q *QueueService) PushEvent(ctx context.Context, event *PaymentEvent) error {
	if err := q.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	start := time.Now()
	defer func() {
		q.metrics.RecordPushLatency(time.Since(start))
	}()

	payload, err := json.Marshal(event)
	if err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	key := fmt.Sprintf("%s:events", q.prefix)
	if err := q.client.Client.LPush(ctx, key, payload).Err(); err != nil {
		q.metrics.RecordError(OpPush)
		return fmt.Errorf("failed to push event: %w", err)
	}

	q.metrics.StartWaitTime(event.EventKey())
	q.metrics.RecordSuccess(OpPush)
	return nil
}

// PopEvent 阻塞取出一条事件，timeout 为 0 表示一直等
func (q *QueueService) PopEvent(ctx context.Context, timeout time.Duration) (*PaymentEvent, error) {
	start := time.Now()
	defer func() {
		q.metrics.RecordPopLatency(time.Since(start))
	}()

	key := fmt.Sprintf("%s:events", q.prefix)
	result, err := q.client.Client.BRPop(ctx, timeout, key).Result()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil // 队列为空
		}
		q.metrics.RecordError(OpPop)
		return nil, fmt.Errorf("failed to pop event: %w", err)
	}

	var event PaymentEvent
	if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
		q.metrics.RecordError(OpPop)
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	q.metrics.EndWaitTime(event.EventKey())
	q.metrics.RecordSuccess(OpPop)
	return &event, nil
}

// Metrics 暴露指标收集器
func (q *QueueService) Metrics() *QueueMetrics {
	return q.metrics
}
