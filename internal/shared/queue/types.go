// Package queue 消息队列类型定义
package queue

import (
	"time"
)

// ============================================================================
// 消息类型
// ============================================================================

// VerificationMessage 验证邮件投递消息
type VerificationMessage struct {
	ID        string
	UserID    string
	Email     string
	Token     string
	CreatedAt time.Time
}

// ============================================================================
// Key 前缀和常量
// ============================================================================

const (
	// 邮件队列 - 存放待投递的验证邮件
	KeyMailVerifications = "mail:verifications"

	// 消费者组
	MailerConsumerGroup = "mailers"
)
