package response

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/apperr"
	"github.com/Shefo-AMI/PropertyPro-UAE/internal/error/code"
	"github.com/Shefo-AMI/PropertyPro-UAE/pkg/logger"
)

// Response 定义统一的响应格式
type Response struct {
	Code    int         `json:"code"`
	Kind    string      `json:"kind,omitempty"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(code.StatusOK, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(code.StatusCreated, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, errorCode int, data interface{}) {
	FailWithMessage(c, errorCode, code.GetMessage(errorCode), data)
}

// FailWithMessage 失败响应（自定义消息）
func FailWithMessage(c *gin.Context, errorCode int, message string, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Kind:    code.GetKind(errorCode),
		Message: message,
		Data:    data,
	})
}

// BindError 请求体无法解析或缺少必填字段
func BindError(c *gin.Context, err error) {
	FailWithMessage(c, code.ErrBind, "invalid request body: "+err.Error(), nil)
}

// ParamError 参数错误响应
func ParamError(c *gin.Context, message string) {
	FailWithMessage(c, code.ErrValidation, message, nil)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrNotFound)
	}
	FailWithMessage(c, code.ErrNotFound, message, nil)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrTokenInvalid)
	}
	FailWithMessage(c, code.ErrTokenInvalid, message, nil)
}

// Error 将领域错误映射为响应
// forbidden 与 not_found 统一返回 404，避免泄露其他租户数据是否存在
func Error(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		FailWithMessage(c, code.ErrValidation, messageOf(err), nil)
	case apperr.KindNotFound, apperr.KindForbidden:
		NotFound(c, notFoundMessage(err))
	default:
		// apperr 存储错误已由服务层记录
		var e *apperr.Error
		if !errors.As(err, &e) {
			logger.L().Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			Fail(c, code.ErrUnknown, nil)
			return
		}
		if e.Entity == apperr.EntityBlob {
			Fail(c, code.ErrBlobStorage, nil)
			return
		}
		Fail(c, code.ErrDatabase, nil)
	}
}

func messageOf(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

func notFoundMessage(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) && e.Entity != "" {
		return e.Entity + " not found"
	}
	return code.GetMessage(code.ErrNotFound)
}
