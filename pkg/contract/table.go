package contract

import "context"

// TableLoader: 从外部资源装载动作表（每次运行仅一次）。
// 约束：
//  1. 保持资源中的行顺序；
//  2. 资源不可读或缺列/值非法时返回包裹 ErrResource 的错误；
//  3. 返回前释放资源句柄（成功与失败均然）。
type TableLoader interface {
	Load(ctx context.Context, source string) ([]ActionRow, error)
}
