package middleware

import (
	"time"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

// AccessLog 每个请求一行 zap 日志，5xx 记为 error
func AccessLog() iris.Handler {
	return func(ctx iris.Context) {
		start := time.Now()
		ctx.Next()

		status := ctx.GetStatusCode()
		fields := []zap.Field{
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", ctx.RemoteAddr()),
		}
		if uid := UserID(ctx); uid != "" {
			fields = append(fields, zap.String("user", uid))
		}
		switch {
		case status >= 500:
			zap.L().Error("请求处理失败", fields...)
		case status >= 400:
			zap.L().Warn("请求被拒绝", fields...)
		default:
			zap.L().Debug("请求完成", fields...)
		}
	}
}
