package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"saltenc/internal/pipeline"
	"saltenc/pkg/contract"
	"saltenc/pkg/registry"
)

// Validate 对最小必要边界做静态校验。
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Input) == "" {
		return errors.New("config: input empty")
	}
	if strings.TrimSpace(cfg.Table.Source) == "" {
		return errors.New("config: table.source empty")
	}
	if f := TableFormat(cfg.Table); registry.Table[f] == nil {
		return fmt.Errorf("config: table format %q not registered", f)
	}
	switch pipeline.MalformedPolicy(effName(cfg.OnError, Defaults().OnError)) {
	case pipeline.MalformedAbort, pipeline.MalformedSkip:
	default:
		return fmt.Errorf("config: on_error %q must be abort|skip", cfg.OnError)
	}
	switch pipeline.UnresolvedPolicy(effName(cfg.OnUnresolved, Defaults().OnUnresolved)) {
	case pipeline.UnresolvedSentinel, pipeline.UnresolvedAbort:
	default:
		return fmt.Errorf("config: on_unresolved %q must be sentinel|abort", cfg.OnUnresolved)
	}
	// 组件名若为空，使用默认名（由 Defaults() 提供）。此处只要最终有值即可。
	d := Defaults().Components
	if name := effName(cfg.Components.Reader, d.Reader); registry.Reader[name] == nil {
		return fmt.Errorf("config: reader %q not registered", name)
	}
	if name := effName(cfg.Components.Splitter, d.Splitter); registry.Splitter[name] == nil {
		return fmt.Errorf("config: splitter %q not registered", name)
	}
	if name := effName(cfg.Components.Parser, d.Parser); registry.Parser[name] == nil {
		return fmt.Errorf("config: parser %q not registered", name)
	}
	if name := effName(cfg.Components.Filter, d.Filter); registry.Filter[name] == nil {
		return fmt.Errorf("config: filter %q not registered", name)
	}
	if name := effName(cfg.Components.Resolver, d.Resolver); registry.Resolver[name] == nil {
		return fmt.Errorf("config: resolver %q not registered", name)
	}
	if name := effName(cfg.Components.Assembler, d.Assembler); registry.Assembler[name] == nil {
		return fmt.Errorf("config: assembler %q not registered", name)
	}
	if name := effName(cfg.Components.Writer, d.Writer); registry.Writer[name] == nil {
		return fmt.Errorf("config: writer %q not registered", name)
	}
	return nil
}

// TableFormat 返回有效的动作表格式：显式值优先，否则按扩展名推断（.db/.sqlite/.sqlite3 → sqlite，其余 tsv）。
func TableFormat(t Table) string {
	if f := strings.ToLower(strings.TrimSpace(t.Format)); f != "" {
		return f
	}
	switch strings.ToLower(filepath.Ext(t.Source)) {
	case ".db", ".sqlite", ".sqlite3":
		return "sqlite"
	default:
		return "tsv"
	}
}

// Assemble 构造 Components 与 Settings。
// 严格 Options 解析在 registry（工厂）层进行；此处只传 raw JSON。
func Assemble(cfg Config) (pipeline.Components, pipeline.Settings, error) {
	if err := Validate(cfg); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, err
	}

	// 有效名称
	d := Defaults()
	rn := effName(cfg.Components.Reader, d.Components.Reader)
	sn := effName(cfg.Components.Splitter, d.Components.Splitter)
	pn := effName(cfg.Components.Parser, d.Components.Parser)
	fn := effName(cfg.Components.Filter, d.Components.Filter)
	vn := effName(cfg.Components.Resolver, d.Components.Resolver)
	an := effName(cfg.Components.Assembler, d.Components.Assembler)
	wn := effName(cfg.Components.Writer, d.Components.Writer)

	// 构造实例
	r, err := registry.Reader[rn](cfg.Options.Reader)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("reader options: %w", err)
	}
	s, err := registry.Splitter[sn](cfg.Options.Splitter)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("splitter options: %w", err)
	}
	p, err := registry.Parser[pn](cfg.Options.Parser)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("parser options: %w", err)
	}
	f, err := registry.Filter[fn](cfg.Options.Filter)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("filter options: %w", err)
	}
	tbl, err := registry.Table[TableFormat(cfg.Table)](cfg.Options.Table)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("table options: %w", err)
	}
	// 解析器依赖运行期装载的表；先以空表构造一次，提前暴露非法选项
	newResolver := registry.Resolver[vn]
	resolverOpts := cloneRaw(cfg.Options.Resolver)
	if _, err := newResolver(resolverOpts, nil); err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("resolver options: %w", err)
	}
	asm, err := registry.Assembler[an](cfg.Options.Assembler)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("assembler options: %w", err)
	}
	w, err := registry.Writer[wn](cfg.Options.Writer)
	if err != nil {
		return pipeline.Components{}, pipeline.Settings{}, fmt.Errorf("writer options: %w", err)
	}

	comp := pipeline.Components{
		Reader:   r,
		Splitter: s,
		Parser:   p,
		Filter:   f,
		Table:    tbl,
		NewResolver: func(rows []contract.ActionRow) (contract.Resolver, error) {
			return newResolver(resolverOpts, rows)
		},
		Assembler: asm,
		Writer:    w,
	}
	set := pipeline.Settings{
		Input: strings.TrimSpace(cfg.Input),
		Table: strings.TrimSpace(cfg.Table.Source),
		Header: contract.Header{
			BuildName:   cfg.BuildName,
			Author:      cfg.Author,
			Description: cfg.Description,
		},
		OnMalformed:  pipeline.MalformedPolicy(effName(cfg.OnError, d.OnError)),
		OnUnresolved: pipeline.UnresolvedPolicy(effName(cfg.OnUnresolved, d.OnUnresolved)),
	}
	return comp, set, nil
}

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}
