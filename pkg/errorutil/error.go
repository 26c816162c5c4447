package errorutil

import "fmt"

// Kind 错误类别
type Kind int

const (
	// KindTransport 传输错误（连接 / 超时），对单次调用终止
	KindTransport Kind = iota
	// KindProtocol 协议错误（非 200 / 响应体无法解析）
	KindProtocol
	// KindValidation 校验错误（发起远程调用前即可检出）
	KindValidation
	// KindEnvironment 环境错误（缺 Cookie / 缺输入文件 / 缺映射表），启动即终止
	KindEnvironment
)

// String 返回类别名称
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindProtocol:
		return "protocol"
	case KindValidation:
		return "validation"
	case KindEnvironment:
		return "environment"
	default:
		return "unknown"
	}
}

// Error 错误结构（带类别标记）
type Error struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	DevDetails string `json:"dev_details,omitempty"`
}

// Error 实现 error 接口
func (e *Error) Error() string {
	return e.Message
}

// Transport 创建传输错误
func Transport(format string, args ...interface{}) *Error {
	return &Error{Kind: KindTransport, Message: fmt.Sprintf(format, args...)}
}

// Protocol 创建协议错误
func Protocol(format string, args ...interface{}) *Error {
	return &Error{Kind: KindProtocol, Message: fmt.Sprintf(format, args...)}
}

// Validation 创建校验错误
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Environment 创建环境错误
func Environment(format string, args ...interface{}) *Error {
	return &Error{Kind: KindEnvironment, Message: fmt.Sprintf(format, args...)}
}

// WithDetails 附加开发者细节
func (e *Error) WithDetails(details string) *Error {
	e.DevDetails = details
	return e
}

// IsKind 判断错误是否为指定类别
func IsKind(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}

// Wrap 包装错误（默认归为协议错误）
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{
		Kind:       KindProtocol,
		Message:    err.Error(),
		DevDetails: fmt.Sprintf("%+v", err),
	}
}
