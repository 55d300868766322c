package server

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
)

// fail 写操作的错误响应：{message, success:false}
func fail(ctx iris.Context, err error) {
	logFailure(ctx, err)
	ctx.StopWithJSON(apperr.HTTPStatus(err), iris.Map{
		"message": apperr.PublicMessage(err),
		"success": false,
	})
}

// failRead 读接口的错误响应：{error}
func failRead(ctx iris.Context, err error) {
	logFailure(ctx, err)
	ctx.StopWithJSON(apperr.HTTPStatus(err), iris.Map{
		"error": apperr.PublicMessage(err),
	})
}

func logFailure(ctx iris.Context, err error) {
	if apperr.HTTPStatus(err) >= iris.StatusInternalServerError {
		zap.L().Error("请求失败",
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.Path()),
			zap.Error(err))
	}
}

// succeed 写操作的成功响应，body 额外带上 success:true
func succeed(ctx iris.Context, status int, message string, body iris.Map) {
	if body == nil {
		body = iris.Map{}
	}
	body["success"] = true
	if message != "" {
		body["message"] = message
	}
	ctx.StatusCode(status)
	_ = ctx.JSON(body)
}
