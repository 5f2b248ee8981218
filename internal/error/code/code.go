package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusCreated - 201: 已创建.
	StatusCreated = 201
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
)

// 资源相关错误码 (101xxx).
const (
	// ErrNotFound - 404: 资源不存在或不在调用方范围内.
	ErrNotFound int = iota + 101000
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrBlobStorage - 500: 文件存储错误.
	ErrBlobStorage
)
