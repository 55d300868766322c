package mysql

import (
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/nabirdeveloper/trusted-brother/internal/config"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/banner"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/category"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/order"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/product"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/slider"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/user"
)

var (
	db   *gorm.DB
	once sync.Once
)

// GormConfig 统一的 GORM 配置：翻译唯一键冲突错误；不建外键，商品被硬删除后订单行仍然保留
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// Init 初始化全局 GORM 实例（进程内只连接一次），返回的句柄注入到各个仓储
func Init(cfg *config.MySQLConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = gorm.Open(mysql.Open(cfg.DSN), GormConfig())
		if err != nil {
			zap.L().Fatal("failed to connect mysql", zap.Error(err))
		}

		if cfg.AutoMigrate {
			if err = Migrate(db); err != nil {
				zap.L().Fatal("auto migrate failed", zap.Error(err))
			}
		}
	})
	return db
}

// 分类名、sku 的唯一性与筛选都区分大小写，MySQL 表统一使用二进制排序规则
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

func tableOptions(dialect string) string {
	if dialect == "mysql" {
		return mysqlTableOptions
	}
	return ""
}

// Migrate 建表
func Migrate(d *gorm.DB) error {
	if opts := tableOptions(d.Dialector.Name()); opts != "" {
		d = d.Set("gorm:table_options", opts)
	}
	return d.AutoMigrate(
		&user.User{},
		&category.Category{},
		&product.Product{},
		&order.Order{},
		&order.Item{},
		&banner.Banner{},
		&slider.CategorySlider{},
	)
}
