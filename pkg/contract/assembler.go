package contract

import (
	"context"
	"io"
)

// Header: SALT 头部字段。三者均不得包含 '|' 或换行。
type Header struct {
	BuildName   string
	Author      string
	Description string
}

// Assembler: 将头部与定长事件码拼接为最终 SALT 文本。
// 约束：
//  1. 事件码按输入顺序拼接，无分隔符；
//  2. 每个事件码恰为 5 字节，否则返回 ErrSeqInvalid；
//  3. 头部字段非法返回 ErrInvalidInput。
type Assembler interface {
	Assemble(ctx context.Context, h Header, codes []string) (io.Reader, error)
}
