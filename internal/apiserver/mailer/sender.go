// Package mailer 验证邮件投递：SMTP 发送与队列消费
package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"blog-backend/internal/config"
)

// Sender 邮件发送接口
type Sender interface {
	Send(to, subject, text, html string) error
}

// NewSender 按配置选择发送实现
//
// SMTP host 未配置时回落到日志发送（开发环境）。
func NewSender(cfg config.SMTPConfig) Sender {
	if cfg.Host == "" {
		return &LogSender{}
	}
	return &SMTPSender{cfg: cfg}
}

// ============================================================================
// SMTP 发送
// ============================================================================

// SMTPSender 通过 SMTP 发送邮件
type SMTPSender struct {
	cfg config.SMTPConfig
}

// Send 发送 text + html 双格式邮件
func (s *SMTPSender) Send(to, subject, text, html string) error {
	msg := buildMessage(s.cfg.From, to, subject, text, html)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// buildMessage 构造 multipart/alternative MIME 报文
func buildMessage(from, to, subject, text, html string) []byte {
	const boundary = "mail-boundary-0"

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n")
	b.WriteString("\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(text + "\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(html + "\r\n")

	b.WriteString("--" + boundary + "--\r\n")
	return []byte(b.String())
}

// ============================================================================
// 日志发送（开发环境）
// ============================================================================

// LogSender 不发真实邮件，内容写入日志
type LogSender struct{}

// Send 将邮件内容记录到日志
func (s *LogSender) Send(to, subject, text, html string) error {
	log.Printf("[Mailer] (log only) to=%s subject=%q body=%q", to, subject, text)
	return nil
}
