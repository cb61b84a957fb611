// Package queue 消息队列抽象接口
//
// 提供验证邮件投递的队列能力，当前由 Redis Streams 实现。
package queue

import (
	"context"
	"time"
)

// ============================================================================
// 队列接口定义
// ============================================================================

// MailQueue 邮件投递队列接口
type MailQueue interface {
	// EnqueueVerification 将验证邮件加入投递队列
	EnqueueVerification(ctx context.Context, userID, email, token string) (string, error)
	CreateMailerConsumerGroup(ctx context.Context) error
	ConsumeVerifications(ctx context.Context, consumerID string, count int64, blockTimeout time.Duration) ([]*VerificationMessage, error)
	AckVerification(ctx context.Context, messageID string) error
	GetMailQueueLength(ctx context.Context) (int64, error)
	GetMailPendingCount(ctx context.Context) (int64, error)
}

// ============================================================================
// 组合接口
// ============================================================================

// Queue 消息队列组合接口
type Queue interface {
	MailQueue
	Close() error
}
