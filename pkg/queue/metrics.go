package queue

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventID 事件标识，等待时间统计用
type EventID string

// MetricOperation 指标操作类型
type MetricOperation string

const (
	OpPush    MetricOperation = "push"
	OpPop     MetricOperation = "pop"
	OpProcess MetricOperation = "process"
)

// LatencyStats 延迟统计
type LatencyStats struct {
	mu    sync.Mutex
	count int64
	total time.Duration
	min   time.Duration
	max   time.Duration
}

// record 记录一次延迟
func (s *LatencyStats) record(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	s.total += d
	if s.min == 0 || d < s.min {
		s.min = d
	}
	if d > s.max {
		s.max = d
	}
}

// Average 平均延迟
func (s *LatencyStats) Average() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.count == 0 {
		return 0
	}
	return s.total / time.Duration(s.count)
}

// QueueMetrics 队列性能指标收集器
type QueueMetrics struct {
	totalEvents      atomic.Int64
	successfulEvents atomic.Int64
	failedEvents     atomic.Int64

	pushLatency    *LatencyStats
	popLatency     *LatencyStats
	processLatency *LatencyStats

	avgWaitTime   atomic.Int64 // 平均等待时间（毫秒）
	waitTimeStart *sync.Map    // map[EventID]time.Time
}

// NewQueueMetrics 创建指标收集器
func NewQueueMetrics() *QueueMetrics {
	return &QueueMetrics{
		pushLatency:    &LatencyStats{},
		popLatency:     &LatencyStats{},
		processLatency: &LatencyStats{},
		waitTimeStart:  &sync.Map{},
	}
}

// RecordSuccess 记录成功操作
func (m *QueueMetrics) RecordSuccess(op MetricOperation) {
	m.successfulEvents.Add(1)
	m.totalEvents.Add(1)
}

// RecordError 记录失败操作
func (m *QueueMetrics) RecordError(op MetricOperation) {
	m.failedEvents.Add(1)
	m.totalEvents.Add(1)
}

// StartWaitTime 记录事件入队时刻
func (m *QueueMetrics) StartWaitTime(id EventID) {
	m.waitTimeStart.Store(id, time.Now())
}

// EndWaitTime 事件出队，更新平均等待时间
func (m *QueueMetrics) EndWaitTime(id EventID) {
	if startTime, ok := m.waitTimeStart.LoadAndDelete(id); ok {
		waitDuration := time.Since(startTime.(time.Time))

		currentAvg := m.avgWaitTime.Load()
		total := m.totalEvents.Load()
		newAvg := (currentAvg*total + waitDuration.Milliseconds()) / (total + 1)
		m.avgWaitTime.Store(newAvg)
	}
}

// RecordPushLatency 记录入队延迟
func (m *QueueMetrics) RecordPushLatency(d time.Duration) {
	m.pushLatency.record(d)
}

// RecordPopLatency 记录出队延迟
func (m *QueueMetrics) RecordPopLatency(d time.Duration) {
	m.popLatency.record(d)
}

// RecordProcessLatency 记录处理延迟
func (m *QueueMetrics) RecordProcessLatency(d time.Duration) {
	m.processLatency.record(d)
}

// Snapshot 当前指标快照
func (m *QueueMetrics) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"total":            m.totalEvents.Load(),
		"successful":       m.successfulEvents.Load(),
		"failed":           m.failedEvents.Load(),
		"avg_wait_ms":      m.avgWaitTime.Load(),
		"avg_push_latency": m.pushLatency.Average().String(),
		"avg_pop_latency":  m.popLatency.Average().String(),
		"avg_process":      m.processLatency.Average().String(),
	}
}
