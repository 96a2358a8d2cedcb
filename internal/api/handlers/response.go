// Package handlers HTTP 處理器共用工具
package handlers

import (
	"errors"
	"net/http"

	"ffridge/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestID 取得本次請求 ID
func RequestID(c *gin.Context) string {
	return requestid.Get(c)
}

// Error 將錯誤轉為 ErrorResponse，詳細信息僅在 debug 模式輸出
func Error(c *gin.Context, err error) {
	status, code := common.StatusOf(err)

	resp := common.ErrorResponse{Code: code}
	var ce *common.CustomError
	switch {
	case common.IsValidationError(err):
		resp.Message = err.Error()
	case errors.As(err, &ce):
		resp.Message = ce.Message
	default:
		resp.Message = "internal server error"
	}
	if gin.Mode() == gin.DebugMode {
		resp.Details = err.Error()
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("request_id", RequestID(c)),
		zap.String("path", c.Request.URL.Path),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// BadRequest 請求格式錯誤
func BadRequest(c *gin.Context, err error) {
	Error(c, common.NewValidationError("invalid request format: "+err.Error()))
}
