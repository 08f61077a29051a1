package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"payugw/pkg/logger"
)

// EventHandler 事件处理函数
type EventHandler func(ctx context.Context, event *PaymentEvent) error

// Worker 事件消费工作器组，负责支付成功后的回执通知
type Worker struct {
	queueService *QueueService
	handler      EventHandler
	stopChan     chan struct{}
	wg           sync.WaitGroup
	config       WorkerConfig
}

// WorkerConfig 工作器配置
type WorkerConfig struct {
	WorkerCount   int           // 并发工作器数量
	MaxRetries    int           // 单条事件最大重试次数
	RetryInterval time.Duration // 重试间隔
	PopTimeout    time.Duration // 出队阻塞时长
}

// NewWorker 创建工作器组。handler 为 nil 时使用默认的日志回执。
func NewWorker(qs *QueueService, handler EventHandler, config WorkerConfig) *Worker {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 4
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = time.Second
	}
	if config.PopTimeout <= 0 {
		config.PopTimeout = 5 * time.Second
	}
	if handler == nil {
		handler = logReceipt
	}

	return &Worker{
		queueService: qs,
		handler:      handler,
		stopChan:     make(chan struct{}),
		config:       config,
	}
}

// Start 启动工作器组
func (w *Worker) Start() {
	for i := 0; i < w.config.WorkerCount; i++ {
		w.wg.Add(1)
		go w.startWorker(i)
	}
}

// Stop 停止工作器组并等待在途事件处理完
func (w *Worker) Stop() {
	close(w.stopChan)
	w.wg.Wait()
}

func (w *Worker) startWorker(id int) {
	defer w.wg.Done()

	logger.InfoString("Queue", "Worker", fmt.Sprintf("worker %d started", id))

	for {
		select {
		case <-w.stopChan:
			logger.InfoString("Queue", "Worker", fmt.Sprintf("worker %d stopping", id))
			return
		default:
			if err := w.processNextEvent(); err != nil {
				logger.ErrorString("Queue", "Worker", err.Error())
				time.Sleep(time.Second)
			}
		}
	}
}

func (w *Worker) processNextEvent() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	event, err := w.queueService.PopEvent(ctx, w.config.PopTimeout)
	if err != nil {
		return fmt.Errorf("pop event: %w", err)
	}
	if event == nil {
		return nil // 队列为空，继续轮询
	}

	return w.handleEvent(ctx, event)
}

func (w *Worker) handleEvent(ctx context.Context, event *PaymentEvent) error {
	start := time.Now()
	defer func() {
		w.queueService.Metrics().RecordProcessLatency(time.Since(start))
	}()

	var err error
	for attempt := 1; attempt <= w.config.MaxRetries; attempt++ {
		if err = w.handler(ctx, event); err == nil {
			w.queueService.Metrics().RecordSuccess(OpProcess)
			return nil
		}
		logger.ErrorString("Queue", "HandleEvent",
			fmt.Sprintf("txnid %s attempt %d: %v", event.Txnid, attempt, err))
		time.Sleep(w.config.RetryInterval)
	}

	w.queueService.Metrics().RecordError(OpProcess)
	return fmt.Errorf("handle event %s: %w", event.Txnid, err)
}

// logReceipt 默认回执：结构化记录一条支付成功事件。
// 邮件或站内信通道接入时替换成真正的发送逻辑。
func logReceipt(ctx context.Context, event *PaymentEvent) error {
	logger.InfoJSON("Queue", "PaymentAccepted", event)
	return nil
}
