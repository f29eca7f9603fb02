// Package apperr classifies errors so transport layers can map them to a status
// without inspecting storage or upstream details.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindInvalid
	KindConflict
	KindUnauthorized
	KindUpstreamUnavailable
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalid:
		return "invalid"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Error 带分类的业务错误
type Error struct {
	Kind Kind
	Code string // 面向客户端的机器可读码，默认取 Kind.String()
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is 按 Kind + Code 匹配，便于 errors.Is(err, ErrPrivateAccount)
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Code == e.Code
}

func newf(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Msg: fmt.Sprintf(format, args...)}
}

// New 带自定义 Code 的错误，用于需要被 errors.Is 区分的哨兵错误
func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, KindNotFound.String(), format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newf(KindForbidden, KindForbidden.String(), format, args...)
}

func Invalid(format string, args ...any) *Error {
	return newf(KindInvalid, KindInvalid.String(), format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newf(KindConflict, KindConflict.String(), format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return newf(KindUnauthorized, KindUnauthorized.String(), format, args...)
}

// Wrap 为底层错误打上分类；err 为 nil 时返回 nil
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Code: kind.String(), Msg: msg, Err: err}
}

// Storage 包装存储层错误
func Storage(err error, msg string) error { return Wrap(KindStorage, err, msg) }

// Upstream 包装外部目录服务错误
func Upstream(err error, msg string) error { return Wrap(KindUpstreamUnavailable, err, msg) }

// KindOf 返回错误链上第一个 *Error 的分类，未分类的错误视为 internal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf 返回错误链上第一个 *Error 的 Code
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return KindOf(err).String()
}

// ErrPrivateAccount 私密账号拒绝访问，与 NotFound 区分以便客户端渲染“私密账号”界面
var ErrPrivateAccount = &Error{
	Kind: KindForbidden,
	Code: "private_account",
	Msg:  "This account is private. Follow to see entries.",
}
