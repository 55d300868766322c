package service

import (
	"sync"
	"time"
)

// Monitor 进程内运行统计，后台 /api/monitor 展示
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	CacheErrors  int64
	MQErrors     int64
	DBErrors     int64
	WorkerErrors int64

	// 业务统计
	OrdersPlaced    int64
	OrderRejected   int64
	StatusChanges   int64
	CacheHits       int64
	CacheMisses     int64
	WorkerProcessed int64
	WorkerFailed    int64

	LastCacheError time.Time
	LastMQError    time.Time
	LastDBError    time.Time
	LastOrderTime  time.Time
	LastWorkerTime time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

func (m *Monitor) RecordCacheError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheErrors++
	m.LastCacheError = time.Now()
}

func (m *Monitor) RecordCacheHit(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.CacheHits++
	} else {
		m.CacheMisses++
	}
}

func (m *Monitor) RecordMQError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MQErrors++
	m.LastMQError = time.Now()
}

func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

// RecordOrder 记录下单结果
func (m *Monitor) RecordOrder(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.OrdersPlaced++
		m.LastOrderTime = time.Now()
	} else {
		m.OrderRejected++
	}
}

func (m *Monitor) RecordStatusChange() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusChanges++
}

func (m *Monitor) RecordWorkerProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerProcessed++
	m.LastWorkerTime = time.Now()
}

func (m *Monitor) RecordWorkerFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WorkerFailed++
	m.WorkerErrors++
}

func rate(part, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// GetStats 统计快照
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"cache":  m.CacheErrors,
			"mq":     m.MQErrors,
			"db":     m.DBErrors,
			"worker": m.WorkerErrors,
		},
		"performance": map[string]interface{}{
			"orders_placed":       m.OrdersPlaced,
			"orders_rejected":     m.OrderRejected,
			"status_changes":      m.StatusChanges,
			"cache_hits":          m.CacheHits,
			"cache_misses":        m.CacheMisses,
			"cache_hit_rate":      rate(m.CacheHits, m.CacheHits+m.CacheMisses),
			"worker_processed":    m.WorkerProcessed,
			"worker_failed":       m.WorkerFailed,
			"worker_success_rate": rate(m.WorkerProcessed, m.WorkerProcessed+m.WorkerFailed),
		},
		"last_events": map[string]interface{}{
			"cache_error": m.LastCacheError,
			"mq_error":    m.LastMQError,
			"db_error":    m.LastDBError,
			"last_order":  m.LastOrderTime,
			"last_worker": m.LastWorkerTime,
		},
	}
}

// Reset 清零计数（测试用）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheErrors, m.MQErrors, m.DBErrors, m.WorkerErrors = 0, 0, 0, 0
	m.OrdersPlaced, m.OrderRejected, m.StatusChanges = 0, 0, 0
	m.CacheHits, m.CacheMisses = 0, 0
	m.WorkerProcessed, m.WorkerFailed = 0, 0
}
