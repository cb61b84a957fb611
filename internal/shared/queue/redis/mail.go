// Package redis MailQueue 操作
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"blog-backend/internal/shared/queue"
)

// EnqueueVerification 将验证邮件加入投递队列
func (s *Store) EnqueueVerification(ctx context.Context, userID, email, token string) (string, error) {
	args := &redis.XAddArgs{
		Stream: queue.KeyMailVerifications,
		MaxLen: 10000,
		Approx: true,
		Values: map[string]interface{}{
			"user_id":    userID,
			"email":      email,
			"token":      token,
			"created_at": time.Now().Format(time.RFC3339Nano),
		},
	}

	msgID, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to enqueue verification mail for user %s: %w", userID, err)
	}

	log.Printf("[Redis/Queue] Enqueued verification mail: user=%s msg_id=%s", userID, msgID)
	return msgID, nil
}

// CreateMailerConsumerGroup 创建邮件消费者组
func (s *Store) CreateMailerConsumerGroup(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, queue.KeyMailVerifications, queue.MailerConsumerGroup, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create mailer consumer group: %w", err)
	}
	return nil
}

// ConsumeVerifications 消费待投递的验证邮件
func (s *Store) ConsumeVerifications(ctx context.Context, consumerID string, count int64, blockTimeout time.Duration) ([]*queue.VerificationMessage, error) {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    queue.MailerConsumerGroup,
		Consumer: consumerID,
		Streams:  []string{queue.KeyMailVerifications, ">"},
		Count:    count,
		Block:    blockTimeout,
	}).Result()

	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume verification mails: %w", err)
	}

	var messages []*queue.VerificationMessage
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			m := &queue.VerificationMessage{
				ID: msg.ID,
			}
			if userID, ok := msg.Values["user_id"].(string); ok {
				m.UserID = userID
			}
			if email, ok := msg.Values["email"].(string); ok {
				m.Email = email
			}
			if token, ok := msg.Values["token"].(string); ok {
				m.Token = token
			}
			if createdAt, ok := msg.Values["created_at"].(string); ok {
				if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
					m.CreatedAt = t
				}
			}
			messages = append(messages, m)
		}
	}

	return messages, nil
}

// AckVerification 确认验证邮件消息已处理
func (s *Store) AckVerification(ctx context.Context, messageID string) error {
	return s.client.XAck(ctx, queue.KeyMailVerifications, queue.MailerConsumerGroup, messageID).Err()
}

// GetMailQueueLength 获取邮件队列长度
func (s *Store) GetMailQueueLength(ctx context.Context) (int64, error) {
	return s.client.XLen(ctx, queue.KeyMailVerifications).Result()
}

// GetMailPendingCount 获取未确认消息数量
func (s *Store) GetMailPendingCount(ctx context.Context) (int64, error) {
	pending, err := s.client.XPending(ctx, queue.KeyMailVerifications, queue.MailerConsumerGroup).Result()
	if err != nil {
		return 0, err
	}
	return pending.Count, nil
}
