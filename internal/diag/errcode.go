package diag

import (
	"context"
	"errors"
	"os"

	"saltenc/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown    Code = "unknown"
	CodeUsage      Code = "usage"
	CodeResource   Code = "resource"
	CodeParse      Code = "parse"
	CodeUnresolved Code = "unresolved"
	CodeInvariant  Code = "invariant"
	CodeCancel     Code = "cancel"
	CodeIO         Code = "io"
)

// Classify 将错误归为最小分类。
// 说明：仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	if errors.Is(err, contract.ErrUsage) {
		return CodeUsage
	}
	// 动作表：先于 I/O 判定（装表失败常包裹 PathError）
	if errors.Is(err, contract.ErrResource) {
		return CodeResource
	}
	if errors.Is(err, contract.ErrMalformedLine) {
		return CodeParse
	}
	if errors.Is(err, contract.ErrUnresolvedAction) {
		return CodeUnresolved
	}
	// 不变量
	if errors.Is(err, contract.ErrInvalidInput) ||
		errors.Is(err, contract.ErrSeqInvalid) ||
		errors.Is(err, contract.ErrPathInvalid) {
		return CodeInvariant
	}
	var perr *os.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}
