package auth

import (
	"context"
	"log"

	"blog-backend/internal/apiserver/user"
	"blog-backend/internal/config"
	"blog-backend/internal/shared/crypt"
	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/queue"
	"blog-backend/internal/shared/result"
)

// Service 认证服务
//
// 登录、注册与邮箱验证建立在用户服务之上；验证邮件经队列异步投递，
// 投递失败不影响注册结果。
type Service struct {
	users *user.Service
	mail  queue.MailQueue // 可为 nil（未配置队列时只记日志）
	cfg   config.AuthConfig
}

// NewService 创建认证服务
func NewService(users *user.Service, mail queue.MailQueue, cfg config.AuthConfig) *Service {
	return &Service{users: users, mail: mail, cfg: cfg}
}

// Login 登录的输入
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignUp 注册的输入
type SignUp struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login 用户名密码登录，成功签发访问令牌
//
// 用户不存在与密码错误折叠为同一个 "Login failed"，
// 不泄露账号是否存在。
func (s *Service) Login(ctx context.Context, in Login) (result.DataResult[Token], error) {
	userRes, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return result.FailData[Token]("Operation failed"), err
	}
	if !userRes.Status || userRes.Data == nil {
		return result.FailData[Token]("Login failed"), nil
	}

	u := userRes.Data
	if u.Status == model.StatusPassive {
		return result.FailData[Token]("User is pending for activation"), nil
	}
	if u.Status == model.StatusSuspended {
		return result.FailData[Token]("User is suspended"), nil
	}

	if !crypt.CheckPassword(in.Password, u.PasswordHash) {
		return result.FailData[Token]("Login failed"), nil
	}

	token, err := GenerateAccessToken(s.cfg, payloadFor(u))
	if err != nil {
		return result.FailData[Token]("Operation failed"), err
	}

	log.Printf("[Auth] User logged in: %s", u.Username)
	return result.OkData(token), nil
}

// SignUp 注册新账号（PASSIVE 状态）并异步投递验证邮件
//
// 投递与请求生命周期解耦：注册的成败只取决于用户记录创建。
func (s *Service) SignUp(ctx context.Context, in SignUp) (result.Result, error) {
	addRes, err := s.users.Add(ctx, user.AddUser{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		return result.Fail("Operation failed"), err
	}
	if !addRes.Status || addRes.Data == nil {
		return result.Fail(addRes.Message), nil
	}

	go s.enqueueVerification(context.WithoutCancel(ctx), addRes.Data)

	return result.OkMsg("Email sent to " + in.Email), nil
}

// SendVerification 重发验证邮件
//
// 已激活的账号直接拒绝，避免无意义的邮件投递。
func (s *Service) SendVerification(ctx context.Context, email string) (result.Result, error) {
	userRes, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return result.Fail("Operation failed"), err
	}
	if !userRes.Status || userRes.Data == nil {
		return result.Fail("User not exists"), nil
	}
	if userRes.Data.Status == model.StatusActive {
		return result.Fail("User is already active"), nil
	}

	go s.enqueueVerification(context.WithoutCancel(ctx), userRes.Data)

	return result.OkMsg("Email sent to " + email), nil
}

// Verify 用邮箱验证令牌激活账号
//
// 解析失败、类型不符和用户缺失折叠为同一个
// "Account verification failed"。
func (s *Service) Verify(ctx context.Context, tokenString string) (result.Result, error) {
	claims, err := ParseToken(s.cfg, tokenString)
	if err != nil || claims.Type != TokenTypeVerify {
		return result.Fail("Account verification failed"), nil
	}

	userRes, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return result.Fail("Operation failed"), err
	}
	if !userRes.Status || userRes.Data == nil {
		return result.Fail("Account verification failed"), nil
	}
	if userRes.Data.Status == model.StatusActive {
		return result.Fail("Account is already active"), nil
	}

	actRes, err := s.users.SelfActivate(ctx, claims.Subject)
	if err != nil {
		return result.Fail("Operation failed"), err
	}
	if !actRes.Status {
		return result.Fail("Account activation failed"), nil
	}

	log.Printf("[Auth] Account activated: %s", claims.Subject)
	return result.OkMsg("Account successfully activated"), nil
}

// enqueueVerification 签发验证令牌并投递到邮件队列
//
// 失败只记日志，调用方（注册 / 重发）已向客户端返回。
func (s *Service) enqueueVerification(ctx context.Context, u *model.User) {
	token, err := GenerateVerifyToken(s.cfg, payloadFor(u))
	if err != nil {
		log.Printf("[Auth] Verify token generation failed: %s: %v", u.ID, err)
		return
	}

	if s.mail == nil {
		log.Printf("[Auth] Mail queue not configured, verification token for %s: %s", u.Email, token.Token)
		return
	}

	if _, err := s.mail.EnqueueVerification(ctx, u.ID, u.Email, token.Token); err != nil {
		log.Printf("[Auth] Verification enqueue failed: %s: %v", u.ID, err)
		return
	}
	log.Printf("[Auth] Verification queued: %s", u.Email)
}

func payloadFor(u *model.User) *model.TokenPayload {
	return &model.TokenPayload{
		ID:       u.ID,
		Status:   u.Status,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
