package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/nabirdeveloper/trusted-brother/internal/config"
	"github.com/nabirdeveloper/trusted-brother/internal/infra/mq"
	"github.com/nabirdeveloper/trusted-brother/internal/infra/redis"
	"github.com/nabirdeveloper/trusted-brother/internal/logger"
	"github.com/nabirdeveloper/trusted-brother/internal/repository/mysql"
	"github.com/nabirdeveloper/trusted-brother/internal/service"
	"github.com/nabirdeveloper/trusted-brother/internal/worker"
)

func main() {
	path := flag.String("config", "", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	l, err := logger.Init(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer l.Sync()

	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)
	if mqConn == nil {
		zap.L().Fatal("rabbitmq is required by the order worker", zap.String("url", cfg.RabbitMQ.URL))
	}
	defer mqConn.Close()

	productRepo := mysql.NewProductRepository(db)
	// 回补与否由订单上记录的 stock_reserved / stock_released 决定
	orders := service.NewOrderService(mysql.NewOrderRepository(db), productRepo, mysql.NewUserRepository(db), nil, service.OrderOptions{
		Cache: service.NewListCache(redisClient, cfg.Catalog.CacheTTL),
	})

	ch, err := mqConn.Channel()
	if err != nil {
		zap.L().Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	if _, err := mq.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
		zap.L().Fatal("failed to declare queue", zap.Error(err))
	}
	// 一次只取一条，处理完再取
	if err := ch.Qos(1, 0, false); err != nil {
		zap.L().Fatal("failed to set qos", zap.Error(err))
	}
	// 手动确认模式（auto-ack=false）
	msgs, err := ch.Consume(cfg.RabbitMQ.Queue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("failed to consume", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zap.L().Info("order worker started", zap.String("queue", cfg.RabbitMQ.Queue))
	worker.NewOrderEventHandler(orders, redisClient).Run(ctx, msgs)
	zap.L().Info("order worker stopped", zap.Any("stats", service.GetMonitor().GetStats()))
}
