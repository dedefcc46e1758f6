package config

import "encoding/json"

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// - 默认输入为 STDIN（"-"），输出到标准输出；
// - 动作表为当前目录下的 salt_map.tsv；
// - 选项包含全部键并给出中性默认值。
func DefaultTemplateConfig() Config {
	d := Defaults()
	cfg := Config{
		Input:        "-",
		Author:       "",
		Description:  "",
		Table:        Table{Source: d.Table.Source, Format: "tsv"},
		OnError:      d.OnError,
		OnUnresolved: d.OnUnresolved,
		Logging:      d.Logging,
		Components:   d.Components,
	}
	cfg.Options.Reader = json.RawMessage(`{
  "buf_size": 65536
}`)
	cfg.Options.Splitter = json.RawMessage(`{
  "max_line_bytes": 4096,
  "allow_exts": []
}`)
	// burny 解析器当前无配置项，保持空对象
	cfg.Options.Parser = json.RawMessage(`{}`)
	cfg.Options.Filter = json.RawMessage(`{
  "markers": ["MULE", "3x Mine gas", "Lift", "to free"],
  "extra": []
}`)
	cfg.Options.Resolver = json.RawMessage(`{
  "keep_level": false
}`)
	cfg.Options.Table = json.RawMessage(`{
  "kind_column": "type",
  "item_column": "item_id",
  "canonical_column": "salt_name",
  "source_column": "burny_name"
}`)
	// salt 装配器无配置项，保持空对象
	cfg.Options.Assembler = json.RawMessage(`{}`)
	cfg.Options.Writer = json.RawMessage(`{
  "no_newline": false
}`)
	return cfg
}
