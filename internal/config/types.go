package config

import (
	"encoding/json"
)

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON 使用 snake_case；未知字段在解析期失败。
type Config struct {
	// Input: 构建顺序文件路径；"-" 表示 STDIN。
	Input       string `json:"input"`
	Author      string `json:"author"`
	Description string `json:"description"`
	// BuildName: 显式构建名；为空时由输入文件名推导。
	BuildName string `json:"build_name"`

	Table Table `json:"table"`

	// OnError: 格式错误行策略（abort|skip）。
	OnError string `json:"on_error"`
	// OnUnresolved: 未解析动作策略（sentinel|abort）。
	OnUnresolved string `json:"on_unresolved"`

	Logging Logging `json:"logging"`
	Metrics Metrics `json:"metrics"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components"`

	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options"`
}

// Table: 动作表来源与格式（tsv|sqlite）。
type Table struct {
	Source string `json:"source"`
	Format string `json:"format"`
}

// Logging: 仅保留日志等级可配置；输出路径与轮转策略为固定默认。
type Logging struct {
	Level string `json:"level"`
}

// Metrics: 非空时运行结束后以文本格式写出指标。
type Metrics struct {
	Textfile string `json:"textfile"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Reader    string `json:"reader"`
	Splitter  string `json:"splitter"`
	Parser    string `json:"parser"`
	Filter    string `json:"filter"`
	Resolver  string `json:"resolver"`
	Assembler string `json:"assembler"`
	Writer    string `json:"writer"`
}

// Options: 各组件的原样 JSON Options。Table 作用于 table.format 选中的装载器。
type Options struct {
	Reader    json.RawMessage `json:"reader"`
	Splitter  json.RawMessage `json:"splitter"`
	Parser    json.RawMessage `json:"parser"`
	Filter    json.RawMessage `json:"filter"`
	Resolver  json.RawMessage `json:"resolver"`
	Table     json.RawMessage `json:"table"`
	Assembler json.RawMessage `json:"assembler"`
	Writer    json.RawMessage `json:"writer"`
}
