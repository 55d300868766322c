package server

import (
	"context"
	"testing"

	"github.com/kataras/iris/v12"
	"github.com/stretchr/testify/require"

	"github.com/nabirdeveloper/trusted-brother/internal/config"
	"github.com/nabirdeveloper/trusted-brother/internal/infra/redis/redistest"
	"github.com/nabirdeveloper/trusted-brother/internal/repository/mysql/mysqltest"
	"github.com/nabirdeveloper/trusted-brother/internal/service"
)

type testEnv struct {
	cfg  *config.Config
	deps *Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.JWT.Secret = "test-secret"
	cfg.Upload.Dir = t.TempDir()
	cfg.Upload.MaxBytes = 1 << 10

	client, _ := redistest.New()
	deps, err := NewDeps(cfg, mysqltest.Open(t), client, nil)
	require.NoError(t, err)
	return &testEnv{cfg: cfg, deps: deps}
}

func (e *testEnv) storefront() *iris.Application {
	app := iris.New()
	MountStorefront(app, e.cfg, e.deps)
	for _, p := range []string{"/auth/login", "/admin-dashboard", "/user-dashboard"} {
		path := p
		app.Get(path, func(ctx iris.Context) { ctx.WriteString(path) })
	}
	return app
}

func (e *testEnv) admin() *iris.Application {
	app := iris.New()
	MountAdmin(app, e.cfg, e.deps)
	return app
}

// token 注册用户并返回 Bearer 头
func (e *testEnv) token(t *testing.T, email, role string) (string, string) {
	t.Helper()
	ctx := context.Background()
	u, err := e.deps.Users.Register(ctx, service.Registration{Name: email, Email: email, Password: "secret1", Role: role})
	require.NoError(t, err)
	token, _, err := e.deps.Users.Login(ctx, email, "secret1")
	require.NoError(t, err)
	return "Bearer " + token, u.ID
}
