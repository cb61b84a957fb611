package mailer

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"blog-backend/internal/shared/queue"
)

// 验证邮件文案
const (
	defaultSubject      = "Account verification"
	defaultText         = "Welcome! Please verify your account by visiting {{URL}}"
	defaultTemplatePath = "templates/verification-email.html"
)

// consumeBlock 队列消费的阻塞等待时长
const consumeBlock = 5 * time.Second

// Dispatcher 验证邮件投递循环
//
// 从队列消费验证消息，拼装激活链接并发送；发送成功后 Ack，
// 失败的消息留在 pending 由下一轮重试。
type Dispatcher struct {
	mail         queue.MailQueue
	sender       Sender
	frontendURL  string
	verifyPath   string
	templatePath string
	consumerID   string
}

// NewDispatcher 创建验证邮件投递器
func NewDispatcher(mail queue.MailQueue, sender Sender, frontendURL string) *Dispatcher {
	return &Dispatcher{
		mail:         mail,
		sender:       sender,
		frontendURL:  strings.TrimSuffix(frontendURL, "/"),
		verifyPath:   "/verify/",
		templatePath: defaultTemplatePath,
		consumerID:   "mailer-1",
	}
}

// Run 启动消费循环，ctx 取消后退出
func (d *Dispatcher) Run(ctx context.Context) {
	if err := d.mail.CreateMailerConsumerGroup(ctx); err != nil {
		log.Printf("[Mailer] Consumer group setup failed: %v", err)
		return
	}
	log.Printf("[Mailer] Dispatcher started")

	for {
		if ctx.Err() != nil {
			log.Printf("[Mailer] Dispatcher stopped")
			return
		}

		msgs, err := d.mail.ConsumeVerifications(ctx, d.consumerID, 10, consumeBlock)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("[Mailer] Dispatcher stopped")
				return
			}
			log.Printf("[Mailer] Consume failed: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if len(msgs) == 0 {
			// 内存队列的 Consume 不阻塞，避免空转
			select {
			case <-ctx.Done():
			case <-time.After(200 * time.Millisecond):
			}
			continue
		}

		for _, m := range msgs {
			if err := d.deliver(m); err != nil {
				log.Printf("[Mailer] Delivery failed for %s: %v", m.Email, err)
				continue
			}
			if err := d.mail.AckVerification(ctx, m.ID); err != nil {
				log.Printf("[Mailer] Ack failed for %s: %v", m.ID, err)
			}
		}
	}
}

// deliver 拼装并发送单封验证邮件
//
// HTML 模板每次发送时读取，后端运行中可直接替换模板文件。
func (d *Dispatcher) deliver(m *queue.VerificationMessage) error {
	url := d.frontendURL + d.verifyPath + m.Token

	text := strings.ReplaceAll(defaultText, "{{URL}}", url)
	html := text
	if tpl, err := os.ReadFile(d.templatePath); err == nil {
		html = strings.ReplaceAll(string(tpl), "{{URL}}", url)
	} else {
		log.Printf("[Mailer] Can not read email template, sending plain text: %v", err)
	}

	if err := d.sender.Send(m.Email, defaultSubject, text, html); err != nil {
		return err
	}
	log.Printf("[Mailer] Verification email sent to %s", m.Email)
	return nil
}
