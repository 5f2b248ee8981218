// Package apperr 定义领域层统一的错误类型
package apperr

import (
	"errors"
	"fmt"
)

// Kind 错误种类，API 边界据此决定状态码
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindStorage      Kind = "storage"
	KindCollaborator Kind = "collaborator"
)

// Error 携带种类以及发生位置(操作、实体类型、实体ID)
type Error struct {
	Kind    Kind
	Op      string
	Entity  string
	ID      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %s", e.Kind, msg)
	}
	if e.ID != "" {
		return fmt.Sprintf("%s %s(%s): %s", e.Op, e.Entity, e.ID, msg)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Entity, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation 请求数据不合法，可由调用方修正
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound 实体不存在
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id, Message: entity + " not found"}
}

// Forbidden 实体存在但不属于调用方
func Forbidden(entity, id string) *Error {
	return &Error{Kind: KindForbidden, Entity: entity, ID: id, Message: entity + " is outside the caller's scope"}
}

// Storage 包装持久化层错误
func Storage(op, entity, id string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Entity: entity, ID: id, Err: err}
}

// EntityBlob 文件存储错误使用的实体名
const EntityBlob = "blob"

// BlobStorage 包装文件存储错误，种类仍为 storage
func BlobStorage(op, key string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Entity: EntityBlob, ID: key, Err: err}
}

// Collaborator 外部语言模型调用失败
func Collaborator(op string, err error) *Error {
	return &Error{Kind: KindCollaborator, Op: op, Err: err}
}

// KindOf 返回错误种类，非 *Error 一律视为存储错误
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// Is 判断错误是否为指定种类
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
