// Package response 统一响应格式 {code, message, data}
package response

import (
	"errors"
	"net/http"

	"MedGuard/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Body 响应体
type Body struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// OK 成功响应，code 固定 200
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Code: http.StatusOK, Message: message, Data: data})
}

// Abort 以指定状态码终止请求
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Body{Code: status, Message: message, Data: nil})
}

// AbortError 以业务错误的类别与提示终止请求
func AbortError(c *gin.Context, e *apperr.Error) {
	Abort(c, e.Kind.Status(), e.Message)
}

// Fail 按错误类别输出响应：业务错误返回其提示，存储与未知错误记录日志并返回"服务器错误"
func Fail(c *gin.Context, logger *logrus.Logger, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) || e.Kind == apperr.KindStorage {
		logger.WithError(err).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).Error("请求处理失败")
		Abort(c, http.StatusInternalServerError, "服务器错误")
		return
	}
	if e.Kind == apperr.KindUpstream {
		logger.WithError(err).WithField("request_id", c.GetString("request_id")).Warn("上游服务调用失败")
	}
	AbortError(c, e)
}
