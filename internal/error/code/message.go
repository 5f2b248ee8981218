package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "success",
	ErrUnknown:         "unknown error",
	ErrBind:            "malformed request body",
	ErrValidation:      "request validation failed",
	ErrTokenInvalid:    "invalid or missing authentication token",
	ErrTooManyRequests: "too many requests, please retry later",

	// 资源相关错误码
	ErrNotFound: "resource not found",

	// 数据库相关错误码
	ErrDatabase:    "storage error",
	ErrBlobStorage: "file storage error",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,

	ErrNotFound: StatusNotFound,

	ErrDatabase:    StatusInternalServerError,
	ErrBlobStorage: StatusInternalServerError,
}

// 错误码机器可读种类映射
var codeKindMap = map[int]string{
	ErrUnknown:         "storage",
	ErrBind:            "validation",
	ErrValidation:      "validation",
	ErrTokenInvalid:    "unauthorized",
	ErrTooManyRequests: "too_many_requests",
	ErrNotFound:        "not_found",
	ErrDatabase:        "storage",
	ErrBlobStorage:     "storage",
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "unknown error"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}

// GetKind 获取错误码对应的错误种类
func GetKind(code int) string {
	return codeKindMap[code]
}
