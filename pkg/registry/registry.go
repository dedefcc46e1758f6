package registry

import (
	"bytes"
	"encoding/json"

	"saltenc/pkg/contract"
	asalt "saltenc/plugins/assembler/salt"
	fmk "saltenc/plugins/filter/marker"
	pbur "saltenc/plugins/parser/burny"
	rfs "saltenc/plugins/reader/filesystem"
	rpre "saltenc/plugins/resolver/prefix"
	slin "saltenc/plugins/splitter/lines"
	tsql "saltenc/plugins/table/sqlite"
	ttsv "saltenc/plugins/table/tsv"
	wfs "saltenc/plugins/writer/filesystem"
	wstd "saltenc/plugins/writer/stream"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// NewReader 工厂签名：接收原样 JSON Options。
type NewReader func(raw json.RawMessage) (contract.Reader, error)

// NewSplitter 工厂签名：接收原样 JSON Options。
type NewSplitter func(raw json.RawMessage) (contract.Splitter, error)

// NewParser 工厂签名：接收原样 JSON Options。
type NewParser func(raw json.RawMessage) (contract.Parser, error)

// NewFilter 工厂签名：接收原样 JSON Options。
type NewFilter func(raw json.RawMessage) (contract.Filter, error)

// NewResolver 工厂签名：接收原样 JSON Options 与已装载的动作表。
// 与其他组件不同，解析器依赖运行期装载的表，因此由 pipeline 在装表后构造。
type NewResolver func(raw json.RawMessage, rows []contract.ActionRow) (contract.Resolver, error)

// NewTableLoader 工厂签名：接收原样 JSON Options。
type NewTableLoader func(raw json.RawMessage) (contract.TableLoader, error)

// NewAssembler 工厂签名：接收原样 JSON Options。
type NewAssembler func(raw json.RawMessage) (contract.Assembler, error)

// NewWriter 工厂签名：接收原样 JSON Options。
type NewWriter func(raw json.RawMessage) (contract.Writer, error)

// Reader 工厂注册表（显式、零反射）。
var Reader = map[string]NewReader{
	// fs: 单文件/STDIN Reader
	"fs": func(raw json.RawMessage) (contract.Reader, error) {
		var opts rfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts), nil
	},
}

// Splitter 工厂注册表。
var Splitter = map[string]NewSplitter{
	// lines: 按行拆分，保留源行号
	"lines": func(raw json.RawMessage) (contract.Splitter, error) {
		var opts slin.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return slin.New(&opts), nil
	},
}

// Parser 工厂注册表。
var Parser = map[string]NewParser{
	// burny: sc2-planner 的 "MM:SS SUPPLY ACTION" 行
	"burny": func(raw json.RawMessage) (contract.Parser, error) {
		var opts pbur.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return pbur.New(&opts), nil
	},
}

// Filter 工厂注册表。
var Filter = map[string]NewFilter{
	// marker: 子串标记过滤（列表来自 options.markers）
	"marker": func(raw json.RawMessage) (contract.Filter, error) {
		var opts fmk.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return fmk.New(&opts), nil
	},
}

// Resolver 工厂注册表。
var Resolver = map[string]NewResolver{
	// prefix: 首个命中的前缀匹配（Level 后缀归一）
	"prefix": func(raw json.RawMessage, rows []contract.ActionRow) (contract.Resolver, error) {
		var opts rpre.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rpre.New(rows, &opts), nil
	},
}

// Table 工厂注册表（动作表来源格式）。
var Table = map[string]NewTableLoader{
	"tsv": func(raw json.RawMessage) (contract.TableLoader, error) {
		var opts ttsv.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ttsv.New(&opts), nil
	},
	"sqlite": func(raw json.RawMessage) (contract.TableLoader, error) {
		var opts tsql.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return tsql.New(&opts)
	},
}

// Assembler 工厂注册表。
var Assembler = map[string]NewAssembler{
	// salt: "%name|author|desc|~" + 定宽事件码
	"salt": func(raw json.RawMessage) (contract.Assembler, error) { return asalt.New(raw) },
}

// Writer 工厂注册表。
var Writer = map[string]NewWriter{
	// stdout: 写到标准输出（默认）
	"stdout": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wstd.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wstd.New(&opts), nil
	},
	// fs: 写为 <output_dir>/<build>.salt（原子替换可配置）
	"fs": func(raw json.RawMessage) (contract.Writer, error) {
		var opts wfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return wfs.New(&opts)
	},
}
