package salt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"saltenc/pkg/contract"
	codec "saltenc/pkg/salt"
)

// Options: 预留占位，SALT 装配无需配置。
type Options struct{}

type assembler struct{}

// New 从原样 JSON Options 创建 SALT 装配器（当前忽略选项）。
func New(raw json.RawMessage) (contract.Assembler, error) {
	_ = raw
	return &assembler{}, nil
}

// Assemble 渲染头部并顺序拼接事件码；
// 头部非法返回 ErrInvalidInput，事件码非定宽或含表外字符返回 ErrSeqInvalid。
func (a *assembler) Assemble(ctx context.Context, h contract.Header, codes []string) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := codec.ValidateHeader(h); err != nil {
		return nil, err
	}
	for i, c := range codes {
		if len(c) != codec.CodeLen {
			return nil, fmt.Errorf("%w: code %d has width %d", contract.ErrSeqInvalid, i, len(c))
		}
		for j := 0; j < len(c); j++ {
			if codec.Index(c[j]) < 0 {
				return nil, fmt.Errorf("%w: code %d contains %q", contract.ErrSeqInvalid, i, c[j])
			}
		}
	}
	doc := codec.Document{Header: h, Codes: codes}
	return strings.NewReader(doc.String()), nil
}

var _ contract.Assembler = (*assembler)(nil)
