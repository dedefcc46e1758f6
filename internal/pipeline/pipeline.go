package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"saltenc/internal/diag"
	"saltenc/pkg/contract"
	"saltenc/pkg/salt"
)

// - 单协程、严格按输入顺序：装表 → 读 → 拆行 → 解析 → 过滤 → 解析动作 → 编码 → 装配 → 写出。
// - 动作表在处理任何事件前装载且仅装载一次。
// - 首个致命错误即返回；装配与写出仅在全部行处理完毕后发生，中止时不产生任何输出。

// MalformedPolicy: 格式错误行的处理策略。
type MalformedPolicy string

const (
	// MalformedAbort: 首个格式错误行即中止（默认）。
	MalformedAbort MalformedPolicy = "abort"
	// MalformedSkip: 记录并跳过该行。
	MalformedSkip MalformedPolicy = "skip"
)

// UnresolvedPolicy: 无法解析动作的处理策略。
type UnresolvedPolicy string

const (
	// UnresolvedSentinel: 类型与条目写哨兵并记录该行（默认）。
	UnresolvedSentinel UnresolvedPolicy = "sentinel"
	// UnresolvedAbort: 首个未解析动作即中止。
	UnresolvedAbort UnresolvedPolicy = "abort"
)

// NewResolver 由已装载的动作表构造解析器。
type NewResolver func(rows []contract.ActionRow) (contract.Resolver, error)

// Components 聚合运行所需的原子组件。
type Components struct {
	Reader      contract.Reader
	Splitter    contract.Splitter
	Parser      contract.Parser
	Filter      contract.Filter
	Table       contract.TableLoader
	NewResolver NewResolver
	Assembler   contract.Assembler
	Writer      contract.Writer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	// 输入路径；"-" 表示 STDIN
	Input string
	// 动作表来源（路径）
	Table string
	// Header.BuildName 为空时由输入文件名推导
	Header       contract.Header
	OnMalformed  MalformedPolicy
	OnUnresolved UnresolvedPolicy
}

// Report 汇总一次运行的行级结果。
type Report struct {
	FileID    contract.FileID
	BuildName string
	// Lines: 非空行数；Emitted: 写出的事件码数；Filtered: 被过滤的行数
	Lines      int
	Emitted    int
	Filtered   int
	Malformed  []*contract.LineError
	Unresolved []*contract.LineError
}

// Issues 返回被报告的行级问题总数。
func (r Report) Issues() int { return len(r.Malformed) + len(r.Unresolved) }

// Run 执行完整流水线并返回报告；出错时报告包含已处理部分的计数。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (Report, error) {
	var rep Report
	if err := sanity(comp, &set); err != nil {
		return rep, fmt.Errorf("sanity: %w", err)
	}

	resolver, err := loadResolver(ctx, comp, set, logger)
	if err != nil {
		return rep, err
	}

	err = comp.Reader.Iterate(ctx, []string{set.Input}, func(fileID contract.FileID, rc io.ReadCloser) error {
		rep.FileID = fileID
		start := time.Now()
		ferr := runFile(ctx, comp, set, resolver, fileID, rc, &rep, logger)
		if t := diag.GetTerminal(); t != nil {
			t.FileFinish(ferr == nil, rep.Emitted, time.Since(start))
		}
		return ferr
	})
	diag.AddEvents("emitted", rep.Emitted)
	diag.AddEvents("filtered", rep.Filtered)
	diag.AddEvents("malformed", len(rep.Malformed))
	diag.AddEvents("unresolved", len(rep.Unresolved))
	return rep, err
}

// loadResolver 装载动作表并构造解析器。
func loadResolver(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (contract.Resolver, error) {
	t0 := time.Now()
	var timer *diag.Timer
	if logger != nil {
		timer = logger.StartWithKV("table", "load", "", map[string]string{"source": set.Table})
	}
	rows, err := comp.Table.Load(ctx, set.Table)
	if err != nil {
		return nil, stageError(logger, "table", "load failed", "", err)
	}
	if timer != nil {
		timer.Finish("loaded", int64(len(rows)))
	}
	diag.IncOp("table", "finish", "success")
	diag.ObserveDuration("table", "load", time.Since(t0).Milliseconds())

	r, err := comp.NewResolver(rows)
	if err != nil {
		return nil, stageError(logger, "resolver", "build failed", "", err)
	}
	return r, nil
}

func runFile(ctx context.Context, comp Components, set Settings, resolver contract.Resolver,
	fileID contract.FileID, rc io.Reader, rep *Report, logger *diag.Logger) error {
	fid := string(fileID)

	var stimer *diag.Timer
	if logger != nil {
		stimer = logger.StartWith("splitter", "split", fid)
	}
	recs, err := comp.Splitter.Split(ctx, fileID, rc)
	if err != nil {
		return stageError(logger, "splitter", "split failed", fid, err)
	}
	if stimer != nil {
		stimer.Finish("split", int64(len(recs)))
	}
	diag.IncOp("splitter", "finish", "success")

	term := diag.GetTerminal()
	if term != nil {
		term.FileStart(fid, len(recs))
	}

	etimer := time.Now()
	codes := make([]string, 0, len(recs))
	for i, rec := range recs {
		if err := ctx.Err(); err != nil {
			return stageError(logger, "encoder", "cancelled", fid, err)
		}
		rep.Lines++
		code, ok, err := encodeRecord(comp, set, resolver, rec, rep, logger)
		if err != nil {
			return stageError(logger, "encoder", "line failed", fid, err)
		}
		if ok {
			// 仅在事件完整编码后追加，失败不会污染已有输出
			codes = append(codes, code)
			rep.Emitted++
		}
		if term != nil {
			term.FileProgress(i+1, len(recs), rep.Issues())
		}
	}
	if logger != nil {
		logger.InfoFinish("encoder", "encoded", etimer, int64(rep.Emitted))
	}
	diag.IncOp("encoder", "finish", "success")
	diag.ObserveDuration("encoder", "encode", time.Since(etimer).Milliseconds())

	h := set.Header
	if h.BuildName == "" {
		h.BuildName = salt.BuildName(fid)
	}
	rep.BuildName = h.BuildName

	var atimer *diag.Timer
	if logger != nil {
		atimer = logger.StartWith("assembler", "assemble", fid)
	}
	out, err := comp.Assembler.Assemble(ctx, h, codes)
	if err != nil {
		return stageError(logger, "assembler", "assemble failed", fid, err)
	}
	if atimer != nil {
		atimer.Finish("assembled", int64(len(codes)))
	}
	diag.IncOp("assembler", "finish", "success")

	var wtimer *diag.Timer
	if logger != nil {
		wtimer = logger.StartWith("writer", "write", fid)
	}
	if err := comp.Writer.Write(ctx, contract.ArtifactID(h.BuildName), out); err != nil {
		return stageError(logger, "writer", "write failed", fid, err)
	}
	if wtimer != nil {
		wtimer.Finish("written", 1)
	}
	diag.IncOp("writer", "finish", "success")
	return nil
}

// encodeRecord 处理单行；ok=false 表示该行不产生事件码（被过滤或按策略跳过）。
func encodeRecord(comp Components, set Settings, resolver contract.Resolver, rec contract.Record,
	rep *Report, logger *diag.Logger) (code string, ok bool, err error) {
	ev, err := comp.Parser.Parse(rec.Line, rec.Text)
	if err != nil {
		var le *contract.LineError
		if !errors.As(err, &le) {
			le = contract.Malformed(rec.Line, rec.Text, err)
		}
		// 中止时同样计入报告，汇总与失败原因一致
		rep.Malformed = append(rep.Malformed, le)
		if set.OnMalformed != MalformedSkip {
			return "", false, le
		}
		if logger != nil {
			logger.WarnLine("parser", string(diag.CodeParse), string(rec.FileID), rec.Line, rec.Text)
		}
		return "", false, nil
	}

	if !comp.Filter.Representable(ev.Action) {
		rep.Filtered++
		if logger != nil {
			logger.DebugStart("filter", "filtered", string(rec.FileID), map[string]string{"action": ev.Action})
		}
		return "", false, nil
	}

	var id *contract.Ident
	got, err := resolver.Resolve(ev.Action)
	switch {
	case err == nil:
		id = &got
	case errors.Is(err, contract.ErrUnresolvedAction):
		le := contract.Unresolved(rec.Line, ev.Action)
		rep.Unresolved = append(rep.Unresolved, le)
		if set.OnUnresolved == UnresolvedAbort {
			return "", false, le
		}
		if logger != nil {
			logger.WarnLine("resolver", string(diag.CodeUnresolved), string(rec.FileID), rec.Line, ev.Action)
		}
	default:
		return "", false, err
	}
	return salt.NewEvent(ev, id).Code(), true, nil
}

// stageError 记录阶段错误（日志 + 指标）并原样返回。
func stageError(logger *diag.Logger, comp, msg, fileID string, err error) error {
	code := diag.Classify(err)
	if logger != nil {
		var le *contract.LineError
		if errors.As(err, &le) {
			logger.ErrorWithKV(comp, string(code), msg, nil, fileID, map[string]string{
				"line": fmt.Sprintf("%d", le.Line),
				"text": le.Text,
			})
		} else {
			logger.ErrorWith(comp, string(code), msg+": "+err.Error(), nil, fileID)
		}
	}
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
	return err
}

func sanity(c Components, s *Settings) error {
	if c.Reader == nil || c.Splitter == nil || c.Parser == nil || c.Filter == nil ||
		c.Table == nil || c.NewResolver == nil || c.Assembler == nil || c.Writer == nil {
		return errors.New("pipeline: missing components")
	}
	if s.Input == "" {
		return errors.New("pipeline: empty input")
	}
	if s.OnMalformed == "" {
		s.OnMalformed = MalformedAbort
	}
	if s.OnUnresolved == "" {
		s.OnUnresolved = UnresolvedSentinel
	}
	switch s.OnMalformed {
	case MalformedAbort, MalformedSkip:
	default:
		return fmt.Errorf("%w: on_error %q", contract.ErrInvalidInput, s.OnMalformed)
	}
	switch s.OnUnresolved {
	case UnresolvedSentinel, UnresolvedAbort:
	default:
		return fmt.Errorf("%w: on_unresolved %q", contract.ErrInvalidInput, s.OnUnresolved)
	}
	return nil
}
