package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
)

// 环境变量前缀。
const envPrefix = "SALT_"

// Defaults 返回带有安全默认值的 Config 雏形。
func Defaults() Config {
	return Config{
		Table:        Table{Source: "salt_map.tsv"},
		OnError:      "abort",
		OnUnresolved: "sentinel",
		Logging:      Logging{Level: "info"},
		Components: Components{
			Reader:    "fs",
			Splitter:  "lines",
			Parser:    "burny",
			Filter:    "marker",
			Resolver:  "prefix",
			Assembler: "salt",
			Writer:    "stdout",
		},
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串/原样 JSON 为“替换”；空值不覆盖，不做深度合并。
func Merge(base, over Config) Config {
	out := base
	setStr(&out.Input, over.Input)
	setStr(&out.Author, over.Author)
	setStr(&out.Description, over.Description)
	setStr(&out.BuildName, over.BuildName)
	setStr(&out.Table.Source, over.Table.Source)
	setStr(&out.Table.Format, over.Table.Format)
	setStr(&out.OnError, over.OnError)
	setStr(&out.OnUnresolved, over.OnUnresolved)
	setStr(&out.Logging.Level, over.Logging.Level)
	setStr(&out.Metrics.Textfile, over.Metrics.Textfile)

	// 组件名（空不覆盖）
	setStr(&out.Components.Reader, over.Components.Reader)
	setStr(&out.Components.Splitter, over.Components.Splitter)
	setStr(&out.Components.Parser, over.Components.Parser)
	setStr(&out.Components.Filter, over.Components.Filter)
	setStr(&out.Components.Resolver, over.Components.Resolver)
	setStr(&out.Components.Assembler, over.Components.Assembler)
	setStr(&out.Components.Writer, over.Components.Writer)

	// Options（完整替换对应键）
	setRaw(&out.Options.Reader, over.Options.Reader)
	setRaw(&out.Options.Splitter, over.Options.Splitter)
	setRaw(&out.Options.Parser, over.Options.Parser)
	setRaw(&out.Options.Filter, over.Options.Filter)
	setRaw(&out.Options.Resolver, over.Options.Resolver)
	setRaw(&out.Options.Table, over.Options.Table)
	setRaw(&out.Options.Assembler, over.Options.Assembler)
	setRaw(&out.Options.Writer, over.Options.Writer)
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 规则：前缀 SALT_；集合之外的键忽略。
// 支持：INPUT, AUTHOR, DESCRIPTION, BUILD_NAME, TABLE, TABLE_FORMAT, ON_ERROR, ON_UNRESOLVED,
// LOG_LEVEL, METRICS_FILE, COMPONENTS_* 以及 OPTIONS_<COMP>_JSON（原样 JSON）。
func EnvOverlay(environ []string) (Config, error) {
	var over Config
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(envPrefix) {
			continue
		}
		key := strings.TrimPrefix(kv[:eq], envPrefix)
		val := kv[eq+1:]
		tv := strings.TrimSpace(val)
		switch key {
		case "INPUT":
			over.Input = tv
		case "AUTHOR":
			// 作者/描述保留原文（空白也属于头部内容）
			over.Author = val
		case "DESCRIPTION":
			over.Description = val
		case "BUILD_NAME":
			over.BuildName = tv
		case "TABLE":
			over.Table.Source = tv
		case "TABLE_FORMAT":
			over.Table.Format = tv
		case "ON_ERROR":
			over.OnError = tv
		case "ON_UNRESOLVED":
			over.OnUnresolved = tv
		case "LOG_LEVEL":
			over.Logging.Level = tv
		case "METRICS_FILE":
			over.Metrics.Textfile = tv
		case "COMPONENTS_READER":
			over.Components.Reader = tv
		case "COMPONENTS_SPLITTER":
			over.Components.Splitter = tv
		case "COMPONENTS_PARSER":
			over.Components.Parser = tv
		case "COMPONENTS_FILTER":
			over.Components.Filter = tv
		case "COMPONENTS_RESOLVER":
			over.Components.Resolver = tv
		case "COMPONENTS_ASSEMBLER":
			over.Components.Assembler = tv
		case "COMPONENTS_WRITER":
			over.Components.Writer = tv
		default:
			// OPTIONS_<COMP>_JSON：空值视为未设置，避免清空 config.json 中的选项
			if !strings.HasPrefix(key, "OPTIONS_") || !strings.HasSuffix(key, "_JSON") || tv == "" {
				continue
			}
			comp := strings.TrimSuffix(strings.TrimPrefix(key, "OPTIONS_"), "_JSON")
			if dst := optionSlot(&over.Options, comp); dst != nil {
				if !json.Valid([]byte(tv)) {
					return Config{}, errors.New("config: " + kv[:eq] + " is not valid JSON")
				}
				*dst = json.RawMessage(tv)
			}
		}
	}
	return over, nil
}

// optionSlot 将 ENV 中的组件名映射到 Options 字段。
func optionSlot(o *Options, comp string) *json.RawMessage {
	switch comp {
	case "READER":
		return &o.Reader
	case "SPLITTER":
		return &o.Splitter
	case "PARSER":
		return &o.Parser
	case "FILTER":
		return &o.Filter
	case "RESOLVER":
		return &o.Resolver
	case "TABLE":
		return &o.Table
	case "ASSEMBLER":
		return &o.Assembler
	case "WRITER":
		return &o.Writer
	default:
		return nil
	}
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setRaw(dst *json.RawMessage, v json.RawMessage) {
	if len(v) > 0 {
		*dst = cloneRaw(v)
	}
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
