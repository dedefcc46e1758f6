package salt

import "saltenc/pkg/contract"

// supplyOffset: 补给值在编码前减去的偏移；低于 supplyFloor 的补给无法单独表示。
const (
	supplyOffset = 10
	supplyFloor  = 11
)

// CodeLen 为单个事件码的固定宽度。
const CodeLen = 5

// Encode 将 0..93 映射为单个字母表字符；越界（含负数）一律返回哨兵。
func Encode(n int) byte {
	if n < 0 || n >= Size {
		return Sentinel
	}
	return Alphabet[n]
}

// EncodeSupply 编码补给：n<11 返回哨兵，否则编码 n-10（溢出同样返回哨兵）。
func EncodeSupply(n int) byte {
	if n < supplyFloor {
		return Sentinel
	}
	return Encode(n - supplyOffset)
}

// ResolvedEvent 是单个事件的编码结果。Type/Item 为 nil 表示动作未解析。
type ResolvedEvent struct {
	Supply byte
	Minute byte
	Second byte
	Type   *byte
	Item   *byte
}

// NewEvent 编码事件；id 为 nil 时类型与条目保持未解析状态。
func NewEvent(ev contract.BuildEvent, id *contract.Ident) ResolvedEvent {
	out := ResolvedEvent{
		Supply: EncodeSupply(ev.Supply),
		Minute: Encode(ev.Minutes),
		Second: Encode(ev.Seconds),
	}
	if id != nil {
		tc, ic := Encode(id.Kind), Encode(id.ItemID)
		out.Type, out.Item = &tc, &ic
	}
	return out
}

// Resolved 报告类型与条目是否均已解析。
func (e ResolvedEvent) Resolved() bool { return e.Type != nil && e.Item != nil }

// Code 输出 5 字节事件码：补给、分、秒、类型、条目。
// 未解析的字段写哨兵，保证定宽；与类型/条目均为 0 的行同形。
func (e ResolvedEvent) Code() string {
	b := [CodeLen]byte{e.Supply, e.Minute, e.Second, Sentinel, Sentinel}
	if e.Type != nil {
		b[3] = *e.Type
	}
	if e.Item != nil {
		b[4] = *e.Item
	}
	return string(b[:])
}
