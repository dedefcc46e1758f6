package contract

import (
	"errors"
	"fmt"
)

// 最小错误分类（用于上层策略判定与退出码映射）。
var (
	// ErrUsage: 命令行用法错误（参数个数等）。
	ErrUsage = errors.New("usage error")
	// ErrResource: 动作表资源缺失或格式错误。
	ErrResource = errors.New("resource error")
	// ErrMalformedLine: 输入行不符合 "MM:SS SUPPLY ACTION"。
	ErrMalformedLine = errors.New("malformed line")
	// ErrUnresolvedAction: 归一后无任何表行匹配。
	ErrUnresolvedAction = errors.New("unresolved action")
	// ErrInvalidInput: 入参违反约束（如头部字段含分隔符）。
	ErrInvalidInput = errors.New("invalid input")
	// ErrSeqInvalid: 事件码定长/顺序约束被破坏。
	ErrSeqInvalid = errors.New("sequence invalid")
	// ErrPathInvalid: 目标标识映射为无效/越界路径（例如绝对路径或 '..' 逃逸）。
	ErrPathInvalid = errors.New("path invalid")
)

// LineKind 标识行级问题的种类。
type LineKind string

const (
	KindMalformed  LineKind = "malformed"
	KindUnresolved LineKind = "unresolved"
)

// LineError 携带出错行号与原文，Unwrap 为对应哨兵错误。
type LineError struct {
	Line int
	Text string
	Kind LineKind
	Err  error
}

func (e *LineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Kind, e.Text)
}

func (e *LineError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	switch e.Kind {
	case KindMalformed:
		return ErrMalformedLine
	case KindUnresolved:
		return ErrUnresolvedAction
	default:
		return nil
	}
}

// Malformed 构造格式错误的行级错误。
func Malformed(line int, text string, cause error) *LineError {
	err := ErrMalformedLine
	if cause != nil {
		err = fmt.Errorf("%w: %v", ErrMalformedLine, cause)
	}
	return &LineError{Line: line, Text: text, Kind: KindMalformed, Err: err}
}

// Unresolved 构造未解析动作的行级错误。
func Unresolved(line int, action string) *LineError {
	return &LineError{Line: line, Text: action, Kind: KindUnresolved, Err: ErrUnresolvedAction}
}
