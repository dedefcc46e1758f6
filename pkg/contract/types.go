package contract

// FileID: 逻辑文档ID（通常为路径，需规范化，跨平台一致）。
type FileID string

// Record: 单行输入片段。
// 约束：
// - FileID 一致；
// - Line 自 1 起严格递增（与源文件行号一致，空行跳过但不重排）；
// - Text 为去掉行尾换行后的原文，不做业务性清洗。
type Record struct {
	Line   int
	FileID FileID
	Text   string
}

// BuildEvent: 一行 "MM:SS SUPPLY ACTION" 的结构化结果。
// Action 原样保留（含首尾空白），匹配阶段自行归一。
type BuildEvent struct {
	Line    int
	Minutes int // 0..99
	Seconds int // 0..59
	Supply  int // >= 0
	Action  string
}

// ActionRow: 动作表中的一行。按文件顺序装载，装载后只读。
// 顺序即语义：解析器按装载顺序首个命中，不得重排/去重。
type ActionRow struct {
	Kind      int
	ItemID    int
	Canonical string // SALT 侧名称
	Source    string // 规划器输出中的动作名（前缀匹配的对象）
}

// Ident: 解析结果（事件类型 + 条目 ID）。
type Ident struct {
	Kind   int
	ItemID int
}
