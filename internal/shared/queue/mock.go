// Package queue 消息队列内存实现
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ============================================================================
// MemoryQueue - 内存 Queue 实现（用于测试和无 Redis 的本地运行）
// ============================================================================

// MemoryQueue 基于切片的 Queue 实现，消费后消息进入 pending，Ack 后移除
type MemoryQueue struct {
	mu      sync.Mutex
	nextID  int64
	ready   []*VerificationMessage
	pending map[string]*VerificationMessage
}

// NewMemoryQueue 创建 MemoryQueue 实例
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		pending: make(map[string]*VerificationMessage),
	}
}

// Close 关闭队列
func (q *MemoryQueue) Close() error {
	return nil
}

// EnqueueVerification 将验证邮件加入投递队列
func (q *MemoryQueue) EnqueueVerification(ctx context.Context, userID, email, token string) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	m := &VerificationMessage{
		ID:        fmt.Sprintf("%d-0", q.nextID),
		UserID:    userID,
		Email:     email,
		Token:     token,
		CreatedAt: time.Now(),
	}
	q.ready = append(q.ready, m)
	return m.ID, nil
}

// CreateMailerConsumerGroup 创建邮件消费者组
func (q *MemoryQueue) CreateMailerConsumerGroup(ctx context.Context) error {
	return nil
}

// ConsumeVerifications 消费待投递的验证邮件
func (q *MemoryQueue) ConsumeVerifications(ctx context.Context, consumerID string, count int64, blockTimeout time.Duration) ([]*VerificationMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := int64(len(q.ready))
	if count > 0 && count < n {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	out := q.ready[:n]
	q.ready = q.ready[n:]
	for _, m := range out {
		q.pending[m.ID] = m
	}
	return out, nil
}

// AckVerification 确认验证邮件消息已处理
func (q *MemoryQueue) AckVerification(ctx context.Context, messageID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, messageID)
	return nil
}

// GetMailQueueLength 获取邮件队列长度
func (q *MemoryQueue) GetMailQueueLength(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.ready) + len(q.pending)), nil
}

// GetMailPendingCount 获取未确认消息数量
func (q *MemoryQueue) GetMailPendingCount(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.pending)), nil
}

// 确保 MemoryQueue 实现了 Queue 接口
var _ Queue = (*MemoryQueue)(nil)
