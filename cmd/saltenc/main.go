package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	cfgpkg "saltenc/internal/config"
	"saltenc/internal/diag"
	"saltenc/internal/pipeline"
	"saltenc/pkg/contract"
)

var pipelineRun = pipeline.Run

// 退出码
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitAssembly = 3
)

// cliFlags: 命令行旗标（空值表示未覆盖）。
type cliFlags struct {
	author       string
	description  string
	config       string
	table        string
	tableFormat  string
	name         string
	onError      string
	onUnresolved string
	logLevel     string
	metricsFile  string
	initDir      string
	status       bool
}

// 单命令 CLI：saltenc [-a author] [-d description] [flags] <input|->
// 旗标可出现在位置参数前后。
func main() {
	os.Exit(run())
}

func newFlagSet(f *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(filepath.Base(os.Args[0]), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.author, "a", "", "作者（写入头部）")
	fs.StringVar(&f.description, "d", "", "描述（写入头部）")
	fs.StringVar(&f.config, "config", "", "配置文件路径（JSON）；缺省读取 ./config.json（若存在）")
	fs.StringVar(&f.table, "table", "", "动作表路径（覆盖配置）")
	fs.StringVar(&f.tableFormat, "table-format", "", "动作表格式 tsv|sqlite（缺省按扩展名推断）")
	fs.StringVar(&f.name, "name", "", "构建名（缺省取输入文件名首个 '.' 之前的部分）")
	fs.StringVar(&f.onError, "on-error", "", "格式错误行策略 abort|skip")
	fs.StringVar(&f.onUnresolved, "on-unresolved", "", "未解析动作策略 sentinel|abort")
	fs.StringVar(&f.logLevel, "log-level", "", "日志级别 debug|info|warn|error")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "运行结束后以 Prometheus 文本格式写出指标")
	fs.StringVar(&f.initDir, "init-config", "", "在指定目录生成默认配置 config.json 和 .env 模板（若已存在则跳过，不覆盖）；不带值时默认当前目录")
	fs.BoolVar(&f.status, "status", true, "终端状态提示（stderr）。TTY 动态刷新；非 TTY 打点输出")
	return fs
}

// parseArgs 解析旗标，允许旗标与位置参数交错。
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return pos, nil
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "用法: %s [-a author] [-d description] [flags] <input|->\n\n", fs.Name())
	fs.SetOutput(w)
	fs.PrintDefaults()
	fs.SetOutput(io.Discard)
}

func run() int {
	start := time.Now()
	corrID := uuid.NewString()
	// 在任何 ENV 读取前，尝试加载工作目录下的 .env（不覆盖已有 ENV）。
	_ = loadDotEnv(".env")
	// 先占位默认，稍后在解析/合并配置后重建 logger 以使用最终 level
	logger := diag.NewLogger(corrID, "info")
	defer func() { _ = logger.Sync() }()

	var f cliFlags
	fs := newFlagSet(&f)
	positional, err := parseArgs(fs, normalizeInitArg(os.Args[1:]))
	if errors.Is(err, flag.ErrHelp) {
		usage(os.Stderr, fs)
		return exitFailure
	}
	if err != nil {
		fprintf(os.Stderr, "参数错误: %v\n", err)
		usage(os.Stderr, fs)
		logger.Error("cli", string(diag.CodeUsage), err.Error(), &start)
		return exitUsage
	}

	// --init-config: 生成模板并退出
	if initDir := strings.TrimSpace(f.initDir); initDir != "" {
		if err := os.MkdirAll(initDir, 0o755); err != nil {
			fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
			logger.Error("cli", string(diag.Classify(err)), "init config", &start)
			return exitAssembly
		}
		if err := writeConfig(filepath.Join(initDir, "config.json"), cfgpkg.DefaultTemplateConfig()); err != nil {
			fprintf(os.Stderr, "生成默认配置失败: %v\n", err)
			logger.Error("cli", string(diag.Classify(err)), "init config", &start)
			return exitAssembly
		}
		if err := writeDotEnv(filepath.Join(initDir, ".env")); err != nil {
			fprintf(os.Stderr, "提示：.env 生成失败（已跳过）：%v\n", err)
		}
		return exitOK
	}

	if len(positional) > 1 {
		err := fmt.Errorf("%w: expected one input, got %d", contract.ErrUsage, len(positional))
		fprintf(os.Stderr, "参数错误: %v\n", err)
		usage(os.Stderr, fs)
		logger.Error("cli", string(diag.CodeUsage), err.Error(), &start)
		return exitUsage
	}

	cfg, code := loadConfig(f, positional, logger, start)
	if code != exitOK {
		return code
	}

	// 使用最终配置中的日志级别重建 logger
	if lvl := strings.TrimSpace(cfg.Logging.Level); lvl != "" {
		_ = logger.Sync()
		logger = diag.NewLogger(corrID, lvl)
	}

	// 预检：若使用文件系统 Writer，检查输出目录的可写性
	if err := preflightCheckOutputDir(cfg); err != nil {
		fprintf(os.Stderr, "输出目录不可写或无法创建: %v\n", err)
		logger.Error("cli", string(diag.Classify(err)), "preflight", &start)
		return exitAssembly
	}

	comp, set, err := cfgpkg.Assemble(cfg)
	if err != nil {
		fprintf(os.Stderr, "装配失败: %v\n", err)
		logger.Error("cli", string(diag.Classify(err)), "assemble", &start)
		return exitAssembly
	}

	// 终端信息提示（非日志）：按 CLI 启用，默认开启
	term := diag.NewTerminal(os.Stderr, f.status)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)
	term.RunStart(set.Table)

	logger.DebugStart("config", "effective", "", map[string]string{
		"input":         set.Input,
		"table":         set.Table,
		"table_format":  cfgpkg.TableFormat(cfg.Table),
		"on_error":      string(set.OnMalformed),
		"on_unresolved": string(set.OnUnresolved),
		"parser":        cfg.Components.Parser,
		"filter":        cfg.Components.Filter,
		"resolver":      cfg.Components.Resolver,
		"writer":        cfg.Components.Writer,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t := logger.Start("pipeline", "run")
	rep, err := pipelineRun(ctx, comp, set, logger)
	printReport(diag.NewTerminal(os.Stderr, true), rep, err == nil, time.Since(start))
	defer writeMetrics(cfg.Metrics.Textfile)
	if err != nil {
		code := diag.Classify(err)
		logger.Error("pipeline", string(code), "first error", &start)
		diag.IncOp("pipeline", "error", "error")
		if code != diag.CodeUnknown {
			diag.IncError("pipeline", string(code))
		}
		if !errors.Is(err, context.Canceled) {
			fprintf(os.Stderr, "运行失败: %v\n", err)
		}
		// 动作表装载失败属于资源装配错误
		if errors.Is(err, contract.ErrResource) {
			return exitAssembly
		}
		return exitFailure
	}
	t.Finish("run", int64(rep.Emitted))
	diag.IncOp("pipeline", "finish", "success")
	diag.ObserveDuration("pipeline", "finish", time.Since(start).Milliseconds())
	return exitOK
}

// loadConfig 合并 defaults < JSON < ENV(.env) < CLI，并做静态校验。
func loadConfig(f cliFlags, positional []string, logger *diag.Logger, start time.Time) (cfgpkg.Config, int) {
	// JSON 配置（文件或 ENV: SALT_CONFIG_JSON）
	var cfgJSON []byte
	if s := os.Getenv("SALT_CONFIG_JSON"); s != "" {
		cfgJSON = []byte(s)
	}
	cfgPath := f.config
	if cfgPath == "" {
		cfgPath = os.Getenv("SALT_CONFIG_FILE")
	}
	// 默认读取工作目录下 config.json（若存在）
	if cfgPath == "" {
		if _, err := os.Stat("config.json"); err == nil {
			cfgPath = "config.json"
		}
	}

	cfg := cfgpkg.Defaults()
	if cfgPath != "" || len(cfgJSON) > 0 {
		base, err := cfgpkg.LoadJSON(cfgPath, cfgJSON)
		if err != nil {
			fprintf(os.Stderr, "配置解析失败: %v\n", err)
			logger.Error("config", string(diag.Classify(err)), "load", &start)
			return cfg, exitAssembly
		}
		cfg = cfgpkg.Merge(cfg, base)
	}

	overEnv, err := cfgpkg.EnvOverlay(os.Environ())
	if err != nil {
		fprintf(os.Stderr, "环境变量解析失败: %v\n", err)
		logger.Error("config", string(diag.Classify(err)), "env", &start)
		return cfg, exitAssembly
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	// CLI 覆盖
	over := cfgpkg.Config{
		Author:       f.author,
		Description:  f.description,
		BuildName:    f.name,
		Table:        cfgpkg.Table{Source: f.table, Format: f.tableFormat},
		OnError:      f.onError,
		OnUnresolved: f.onUnresolved,
		Logging:      cfgpkg.Logging{Level: f.logLevel},
		Metrics:      cfgpkg.Metrics{Textfile: f.metricsFile},
	}
	if len(positional) == 1 {
		over.Input = positional[0]
	}
	cfg = cfgpkg.Merge(cfg, over)

	if strings.TrimSpace(cfg.Input) == "" {
		fprintf(os.Stderr, "参数错误: %v: missing input\n", contract.ErrUsage)
		logger.Error("cli", string(diag.CodeUsage), "missing input", &start)
		return cfg, exitUsage
	}
	if err := cfgpkg.Validate(cfg); err != nil {
		fprintf(os.Stderr, "配置校验失败: %v\n", err)
		// 提示打印有效配置，便于诊断
		_ = dumpConfig(cfg)
		logger.Error("config", string(diag.Classify(err)), "validate", &start)
		return cfg, exitAssembly
	}
	return cfg, exitOK
}

// printReport 将行级问题与计数输出到 stderr。
func printReport(term *diag.Terminal, rep pipeline.Report, ok bool, dur time.Duration) {
	for _, le := range rep.Malformed {
		term.Issue(string(le.Kind), le.Line, le.Text)
	}
	for _, le := range rep.Unresolved {
		term.Issue(string(le.Kind), le.Line, le.Text)
	}
	term.Summary(ok, rep.Lines, rep.Emitted, rep.Filtered, len(rep.Malformed), len(rep.Unresolved), dur)
}

func writeMetrics(path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	if err := diag.WriteMetrics(path); err != nil {
		fprintf(os.Stderr, "提示：指标写出失败：%v\n", err)
	}
}

func fprintf(w *os.File, format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

func dumpConfig(c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	_, _ = os.Stderr.Write(append([]byte("有效配置:\n"), b...))
	_, _ = os.Stderr.Write([]byte("\n"))
	return nil
}

func writeConfig(path string, c cfgpkg.Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(append(b, '\n'))
		return err
	}
	// 不覆盖已存在文件
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}

// loadDotEnv 读取简单的 .env 文件格式并注入进程环境。
// 规则：
// - 忽略不存在的文件；无法读取时返回错误（但调用处可忽略）。
// - 跳过空行与以 # 开头的行；支持可选的前缀 "export ".
// - 仅按首个 '=' 分割；key 为左侧去空白；value 去首尾空白；
// - 若 value 被成对的单/双引号包裹，则去除外层引号；双引号内常见转义 \n/\t/\\/\" 作最小处理。
// - 不覆盖已存在的环境变量（保持系统/调用者优先）。
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		eq := strings.IndexByte(line, '=')
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		if key == "" {
			continue
		}
		if len(val) >= 2 {
			if (val[0] == '\'' && val[len(val)-1] == '\'') || (val[0] == '"' && val[len(val)-1] == '"') {
				quoted := val[0]
				val = val[1 : len(val)-1]
				if quoted == '"' {
					val = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\r`, "\r", `\"`, `"`, `\\`, `\`).Replace(val)
				}
			}
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
	return s.Err()
}

// normalizeInitArg: 允许 --init-config 在未提供路径值时采用默认值当前目录 "."。
//
//	--init-config                => 等价于 --init-config .
//	--init-config=out
//	--init-config out
func normalizeInitArg(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for i, a := range args {
		out = append(out, a)
		if a == "--init-config" || a == "-init-config" {
			if i == len(args)-1 || strings.HasPrefix(args[i+1], "-") {
				out = append(out, ".")
			}
		}
	}
	return out
}

// writeDotEnv 生成 .env 模板（若文件已存在则跳过）。
func writeDotEnv(path string) error {
	var b strings.Builder
	b.WriteString("# saltenc .env 模板（由 --init-config 生成）\n")
	b.WriteString("# 优先级：CLI > ENV(.env) > JSON\n")
	b.WriteString("# 空值表示未设置。\n\n")

	b.WriteString("# 配置来源（可二选一）\n")
	b.WriteString("SALT_CONFIG_FILE=\n")
	b.WriteString("SALT_CONFIG_JSON=\n\n")

	b.WriteString("# 运行参数覆盖\n")
	for _, k := range []string{"INPUT", "AUTHOR", "DESCRIPTION", "BUILD_NAME", "TABLE", "TABLE_FORMAT",
		"ON_ERROR", "ON_UNRESOLVED", "LOG_LEVEL", "METRICS_FILE"} {
		b.WriteString("SALT_" + k + "=\n")
	}
	b.WriteString("\n# 组件选择\n")
	for _, k := range []string{"READER", "SPLITTER", "PARSER", "FILTER", "RESOLVER", "ASSEMBLER", "WRITER"} {
		b.WriteString("SALT_COMPONENTS_" + k + "=\n")
	}
	b.WriteString("\n# 组件选项（原样 JSON）\n")
	for _, k := range []string{"FILTER", "TABLE", "WRITER"} {
		b.WriteString("SALT_OPTIONS_" + k + "_JSON=\n")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	_, err = f.WriteString(b.String())
	return err
}

// preflightCheckOutputDir: 当 Writer 使用文件系统实现(fs)时，启动前检查输出目录可写性。
// - 若目录已存在：尝试创建并删除临时文件；失败则判为不可写。
// - 若目录不存在：检查父目录是否可写（尝试在父目录创建并删除临时目录）。
func preflightCheckOutputDir(cfg cfgpkg.Config) error {
	writerName := strings.TrimSpace(cfg.Components.Writer)
	if writerName == "" {
		writerName = cfgpkg.Defaults().Components.Writer
	}
	if writerName != "fs" {
		return nil
	}
	var wopts struct {
		OutputDir string `json:"output_dir"`
	}
	if len(cfg.Options.Writer) > 0 {
		_ = json.Unmarshal(cfg.Options.Writer, &wopts)
	}
	dir := strings.TrimSpace(wopts.OutputDir)
	if dir == "" {
		// 未指定时无法可靠检查，让装配阶段按实现自行报错
		return nil
	}
	st, err := os.Stat(dir)
	switch {
	case err == nil && st.IsDir():
		f, err := os.CreateTemp(dir, ".wcheck-*")
		if err != nil {
			return err
		}
		name := f.Name()
		_ = f.Close()
		_ = os.Remove(name)
		return nil
	case err == nil:
		return fmt.Errorf("路径存在但不是目录: %s", dir)
	case !os.IsNotExist(err):
		return err
	}
	parent := filepath.Dir(dir)
	pst, err := os.Stat(parent)
	if err != nil {
		return err
	}
	if !pst.IsDir() {
		return fmt.Errorf("父路径不是目录: %s", parent)
	}
	tmpd, err := os.MkdirTemp(parent, ".wcheck-*")
	if err != nil {
		return err
	}
	_ = os.RemoveAll(tmpd)
	return nil
}
