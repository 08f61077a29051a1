package bootstrap

import (
	"time"

	"payugw/pkg/config"
	"payugw/pkg/logger"
	"payugw/pkg/queue"
	"payugw/pkg/redis"
)

var queueWorker *queue.Worker

// SetupQueue 初始化支付事件队列与消费工作器，
// 返回队列服务供控制器投递事件
func SetupQueue() *queue.QueueService {
	if redis.Manager == nil {
		logger.ErrorString("Queue", "Setup", "Redis manager not initialized")
		return nil
	}

	queueService := queue.NewQueueService()

	worker := queue.NewWorker(queueService, nil, queue.WorkerConfig{
		WorkerCount:   config.GetInt("queue.worker_count", 4),
		MaxRetries:    config.GetInt("queue.retry_times", 3),
		RetryInterval: time.Duration(config.GetInt("queue.retry_delay", 1)) * time.Second,
		PopTimeout:    5 * time.Second,
	})

	worker.Start()
	queueWorker = worker

	logger.InfoString("Queue", "Setup", "队列服务启动成功")
	return queueService
}

// StopQueue 关停消费工作器，等待在途事件处理完
func StopQueue() {
	if queueWorker != nil {
		queueWorker.Stop()
	}
}
