package contract

import (
	"context"
	"io"
)

// Splitter: 将单文件字节流拆分为按行号有序的 Record 序列。
// 约束：
// 1) 不跨文件合并；
// 2) Line 严格递增且与源文件一致；
// 3) 仅做 CRLF→LF 的最小必要归一；
// 4) 无内部并发、幂等。
type Splitter interface {
	Split(ctx context.Context, fileID FileID, r io.Reader) ([]Record, error)
}
