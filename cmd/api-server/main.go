// Package main API Server 入口
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-backend/internal/apiserver/auth"
	"blog-backend/internal/apiserver/mailer"
	"blog-backend/internal/apiserver/server"
	"blog-backend/internal/config"
	"blog-backend/internal/shared/objstore"
	"blog-backend/internal/shared/queue"
	redisqueue "blog-backend/internal/shared/queue/redis"
	"blog-backend/internal/shared/storage/mongostore"
)

func main() {
	// 加载配置（自动加载 .env.{env} + configs/{env}.yaml）
	cfg := config.Load()

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	// 初始化 MongoDB（持久化业务数据）
	store, err := mongostore.NewStore(cfg.DatabaseURL, cfg.DatabaseDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer store.Close()
	log.Println("Connected to MongoDB")

	// 初始化邮件队列（Redis Streams），连不上时退化为进程内队列
	var mail queue.MailQueue
	if rq, err := redisqueue.NewStoreFromURL(cfg.RedisURL); err != nil {
		log.Printf("WARNING: Redis unavailable, using in-memory mail queue: %v", err)
		mail = queue.NewMemoryQueue()
	} else {
		defer rq.Close()
		mail = rq
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化 MinIO 对象存储（可选，未配置时图片接口返回 503）
	var images *objstore.Client
	if cfg.MinIO.Endpoint != "" {
		images, err = objstore.NewClient(cfg.MinIO)
		if err != nil {
			log.Fatalf("Failed to create MinIO client: %v", err)
		}
		if err := images.EnsureBucket(ctx); err != nil {
			log.Fatalf("Failed to ensure MinIO bucket: %v", err)
		}
		log.Println("Connected to MinIO")
	} else {
		log.Println("MinIO not configured, image storage disabled")
	}

	// 确保管理员账号存在（ADMIN_EMAIL/ADMIN_PASSWORD）
	if err := auth.EnsureAdminUser(ctx, store, cfg.Auth); err != nil {
		log.Fatalf("Failed to ensure admin user: %v", err)
	}

	h := server.NewHandler(store, mail, images, cfg)

	// 启动验证邮件派发器与队列指标采集
	dispatcher := mailer.NewDispatcher(mail, mailer.NewSender(cfg.SMTP), cfg.APIServer.FrontendURL)
	go dispatcher.Run(ctx)
	go h.StartQueueStatsCollector(ctx, mail)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
