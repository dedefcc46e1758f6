package contract

// Parser: 单行文本 → BuildEvent。
// 纯函数；不匹配时返回 *LineError（Unwrap 为 ErrMalformedLine），不得 panic。
type Parser interface {
	Parse(line int, text string) (BuildEvent, error)
}

// Filter: 判定动作在 SALT 中是否有对应项。
// 返回 false 的事件整体不输出（不仅仅是跳过查表）。
type Filter interface {
	Representable(action string) bool
}

// Resolver: 在已装载的动作表中查找 (type,item)。
// 未命中返回 ErrUnresolvedAction。
type Resolver interface {
	Resolve(action string) (Ident, error)
}
