package auth

import (
	"context"
	"fmt"
	"log"
	"time"

	"blog-backend/internal/config"
	"blog-backend/internal/shared/crypt"
	"blog-backend/internal/shared/model"
	"blog-backend/internal/shared/storage"
)

// EnsureAdminUser 确保系统管理员存在（启动时调用）
//
// 配置了 ADMIN_EMAIL / ADMIN_PASSWORD 且该用户不存在时自动创建，
// 已存在但角色不是 sys_admin 时提升角色。
func EnsureAdminUser(ctx context.Context, store storage.UserStore, cfg config.AuthConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	existing, err := store.GetUserByEmail(ctx, cfg.AdminEmail)
	if err != nil {
		return fmt.Errorf("check admin user: %w", err)
	}
	if existing != nil {
		if existing.Role != model.RoleSysAdmin {
			log.Printf("[Auth] Upgrading user %s to sys_admin role", cfg.AdminEmail)
			if err := store.UpdateUserRole(ctx, existing.ID, model.RoleSysAdmin); err != nil {
				return fmt.Errorf("upgrade admin role: %w", err)
			}
		}
		log.Printf("[Auth] Admin user already exists: %s (%s)", cfg.AdminEmail, existing.ID)
		return nil
	}

	hash, err := crypt.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now()
	u := &model.User{
		ID:           generateID("usr"),
		Username:     "admin",
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         model.RoleSysAdmin,
		Status:       model.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Printf("[Auth] Created admin user: %s (%s)", cfg.AdminEmail, u.ID)
	return nil
}
