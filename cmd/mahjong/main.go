package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"sudooom.mahjong/internal/config"
	"sudooom.mahjong/internal/game"
	"sudooom.mahjong/internal/handler"
	"sudooom.mahjong/internal/health"
	mjNats "sudooom.mahjong/internal/nats"
	"sudooom.mahjong/internal/repository"
	"sudooom.mahjong/internal/router"
	"sudooom.mahjong/internal/snowflake"
	"sudooom.mahjong/internal/task"
	"sudooom.mahjong/internal/ws"
)

func main() {
	// 加载配置
	cfg, err := config.Load(configPath())
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.App.LogLevel),
	}))
	slog.SetDefault(logger)

	// 创建上下文
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化雪花ID生成器
	sfNode, err := snowflake.NewNode(cfg.App.NodeID)
	if err != nil {
		logger.Error("Failed to create snowflake node", "error", err)
		os.Exit(1)
	}

	// 启动 AI 调度器
	scheduler := task.NewScheduler(task.Config{
		WorkerCount: cfg.Scheduler.WorkerCount,
		SlotCount:   cfg.Scheduler.SlotCount,
		Tick:        cfg.Scheduler.Tick,
	})
	if err := scheduler.Start(); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	sessions := game.NewManager(cfg.Game, sfNode, scheduler)
	hub := ws.NewHub()
	sessions.AddObserver(hub)

	// 未启用的依赖保持 nil 接口
	var (
		natsConn  health.NATSConn
		redisPing health.RedisPinger
		dbPing    health.DBPinger
		board     handler.Leaderboard
	)

	// 连接 NATS
	var subscriber *mjNats.CommandSubscriber
	if cfg.NATS.Enabled {
		natsClient, err := mjNats.NewClient(cfg.NATS)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()
		logger.Info("Connected to NATS", "url", cfg.NATS.URL)

		sessions.AddObserver(mjNats.NewEventPublisher(natsClient.Conn()))
		subscriber = mjNats.NewCommandSubscriber(natsClient.Conn(), sessions, mjNats.SubscriberConfig{})
		if err := subscriber.Start(ctx); err != nil {
			logger.Error("Failed to start subscriber", "error", err)
			os.Exit(1)
		}
		natsConn = natsClient
	}

	// 连接 Redis
	if cfg.Redis.Enabled {
		redisClient := connectRedis(cfg.Redis)
		defer redisClient.Close()
		logger.Info("Connected to Redis", "addr", cfg.Redis.Addr())

		scoreBoard := repository.NewScoreBoard(redisClient, 0)
		sessions.AddObserver(scoreBoard)
		board = scoreBoard
		redisPing = redisClient
	}

	// 连接数据库
	if cfg.Database.Enabled {
		db, err := connectDatabase(ctx, cfg.Database)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("Connected to PostgreSQL", "host", cfg.Database.Host)

		roundRepo := repository.NewRoundRepository(db)
		if err := roundRepo.EnsureSchema(ctx); err != nil {
			logger.Error("Failed to create schema", "error", err)
			os.Exit(1)
		}
		sessions.AddObserver(roundRepo)
		dbPing = db
	}

	// 初始化 Handler
	checker := health.NewChecker(natsConn, redisPing, dbPing, sessions.Count)
	sessionHandler := handler.NewSessionHandler(sessions, hub, cfg.Server.AllowedOrigins)
	handHandler := handler.NewHandHandler(board)

	// 设置路由
	r := router.SetupRouter(cfg, checker, sessionHandler, handHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	// 启动服务器
	go func() {
		logger.Info("Mahjong server started", "addr", server.Addr, "mode", cfg.Server.Mode)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	if subscriber != nil {
		if err := subscriber.Stop(); err != nil {
			logger.Error("Subscriber stop failed", "error", err)
		}
	}
	if err := sessions.Shutdown(shutdownCtx); err != nil {
		logger.Error("Session shutdown failed", "error", err)
	}
	scheduler.Stop()
	cancel()

	logger.Info("Server stopped")
}

// configPath 配置文件路径，MAHJONG_CONFIG 优先
func configPath() string {
	if p := os.Getenv("MAHJONG_CONFIG"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// connectDatabase 连接 PostgreSQL
func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = 10 * time.Minute

	return pgxpool.NewWithConfig(ctx, poolConfig)
}

// connectRedis 连接 Redis
func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
