package contract

import (
	"context"
	"io"
)

// ArtifactID: 输出工件标识（通常为构建名）。
type ArtifactID string

// Writer: 将装配结果写到目标介质（标准输出/文件系统）。
// 约束：
//  1. 同一 ArtifactID 单写者；
//  2. 按字节透传，不读取/修改业务内容；
//  3. ctx 取消需尽快返回；
//  4. 错误直接上抛（不做重试/回退）。
type Writer interface {
	Write(ctx context.Context, id ArtifactID, r io.Reader) error
}
