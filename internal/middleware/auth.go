package middleware

import (
	"github.com/kataras/iris/v12"

	"github.com/nabirdeveloper/trusted-brother/internal/auth"
	"github.com/nabirdeveloper/trusted-brother/internal/config"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/user"
)

const (
	keyUserID = "user_id"
	keyRole   = "role"

	// TokenCookie 浏览器跳转类请求没有 Authorization 头，从该 cookie 读取 token
	TokenCookie = "token"
)

// Session 解析 token 并写入 ctx.Values；没有或无效的 token 不拦截
func Session(cfg *config.JWTConfig, cache *auth.TokenCache) iris.Handler {
	return func(ctx iris.Context) {
		token := ctx.GetHeader("Authorization")
		if token == "" {
			token = ctx.GetCookie(TokenCookie)
		}
		if token != "" {
			if claims, err := cache.Authenticate(ctx.Request().Context(), cfg, token); err == nil {
				ctx.Values().Set(keyUserID, claims.UserID)
				ctx.Values().Set(keyRole, string(claims.Role))
			}
		}
		ctx.Next()
	}
}

// RequireUser 未登录返回 401，需在 Session 之后使用
func RequireUser() iris.Handler {
	return func(ctx iris.Context) {
		if UserID(ctx) == "" {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"message": "Unauthorized", "success": false})
			return
		}
		ctx.Next()
	}
}

// RequireAdmin 未登录 401，非管理员 403
func RequireAdmin() iris.Handler {
	return func(ctx iris.Context) {
		if UserID(ctx) == "" {
			ctx.StopWithJSON(iris.StatusUnauthorized, iris.Map{"message": "Unauthorized", "success": false})
			return
		}
		if Role(ctx) != user.RoleAdmin {
			ctx.StopWithJSON(iris.StatusForbidden, iris.Map{"message": "Forbidden", "success": false})
			return
		}
		ctx.Next()
	}
}

// UserID 当前请求的用户，未登录为空
func UserID(ctx iris.Context) string {
	return ctx.Values().GetString(keyUserID)
}

func Role(ctx iris.Context) user.Role {
	return user.Role(ctx.Values().GetString(keyRole))
}
