// seed-admin 创建第一个管理员账号；后台没有注册入口
package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/nabirdeveloper/trusted-brother/internal/auth"
	"github.com/nabirdeveloper/trusted-brother/internal/config"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/user"
	"github.com/nabirdeveloper/trusted-brother/internal/logger"
	"github.com/nabirdeveloper/trusted-brother/internal/repository/mysql"
	"github.com/nabirdeveloper/trusted-brother/internal/service"
)

func main() {
	path := flag.String("config", "", "配置文件路径")
	name := flag.String("name", "Admin", "管理员名称")
	email := flag.String("email", "", "管理员邮箱")
	password := flag.String("password", "", "管理员密码")
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
	users := service.NewUserService(mysql.NewUserRepository(db), auth.NewPasswordHasher(auth.DefaultBcryptCost), &cfg.JWT)

	u, err := users.Register(context.Background(), service.Registration{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Role:     string(user.RoleAdmin),
	})
	if err != nil {
		zap.L().Fatal("failed to create admin", zap.Error(err))
	}
	zap.L().Info("admin created", zap.String("id", u.ID), zap.String("email", u.Email))
}
