package server

import (
	"time"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nabirdeveloper/trusted-brother/internal/auth"
	"github.com/nabirdeveloper/trusted-brother/internal/config"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/order"
	"github.com/nabirdeveloper/trusted-brother/internal/infra/mq"
	"github.com/nabirdeveloper/trusted-brother/internal/infra/redis"
	"github.com/nabirdeveloper/trusted-brother/internal/repository/mysql"
	"github.com/nabirdeveloper/trusted-brother/internal/service"
)

// Deps 路由依赖的服务集合
type Deps struct {
	Catalog    *service.CatalogService
	Categories *service.CategoryService
	Orders     *service.OrderService
	Users      *service.UserService
	Banners    *service.BannerService
	Sliders    *service.SliderService
	Uploader   service.Uploader
	Tokens     *auth.TokenCache
}

// NewDeps 用注入的连接组装仓储与服务；redis、events 可为 nil
func NewDeps(cfg *config.Config, db *gorm.DB, redisClient radix.Client, events service.EventPublisher) (*Deps, error) {
	productRepo := mysql.NewProductRepository(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	userRepo := mysql.NewUserRepository(db)

	cache := service.NewListCache(redisClient, cfg.Catalog.CacheTTL)
	transitions := order.PermissiveTransitions()
	if cfg.Order.StrictTransitions {
		transitions = order.StrictTransitions()
	}

	uploader, err := service.NewDiskUploader(&cfg.Upload)
	if err != nil {
		return nil, err
	}

	return &Deps{
		Catalog:    service.NewCatalogService(productRepo, categoryRepo, cache, cfg.Catalog.DefaultPageSize),
		Categories: service.NewCategoryService(categoryRepo, cache),
		Orders: service.NewOrderService(mysql.NewOrderRepository(db), productRepo, userRepo, events, service.OrderOptions{
			Transitions:  transitions,
			ReserveStock: cfg.Order.ReserveStock,
			Cache:        cache,
		}),
		Users:    service.NewUserService(userRepo, auth.NewPasswordHasher(auth.DefaultBcryptCost), &cfg.JWT),
		Banners:  service.NewBannerService(mysql.NewBannerRepository(db)),
		Sliders:  service.NewSliderService(mysql.NewCategorySliderRepository(db), categoryRepo),
		Uploader: uploader,
		Tokens:   auth.NewTokenCache(redisClient, 10*time.Minute),
	}, nil
}

// initDeps 初始化基础设施单例后组装依赖，失败直接退出进程
func initDeps(cfg *config.Config) *Deps {
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)

	var events service.EventPublisher
	if conn := mq.Init(&cfg.RabbitMQ); conn != nil {
		pub, err := mq.NewPublisher(conn, cfg.RabbitMQ.Queue)
		if err != nil {
			zap.L().Warn("订单事件发布器初始化失败，事件将被丢弃", zap.Error(err))
		} else {
			events = pub
		}
	}

	deps, err := NewDeps(cfg, db, redisClient, events)
	if err != nil {
		zap.L().Fatal("初始化服务失败", zap.Error(err))
	}
	return deps
}
