package diag

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Terminal: 终端信息提示（非日志）。
// - 输出到提供的 io.Writer（默认建议 stderr）。
// - TTY: 进度单行 \r 覆盖，标签着色；非 TTY: 关键节点分行纯文本。
// - 并发安全；写失败后进入禁用态为 no-op。
type Terminal struct {
	w       io.Writer
	enabled bool
	isTTY   bool

	// 标签样式（非 TTY 时渲染器降级为纯文本）
	okStyle   lipgloss.Style
	failStyle lipgloss.Style
	tagStyle  lipgloss.Style
	dimStyle  lipgloss.Style

	table    string
	runStart time.Time

	// 当前文件
	curFileID  string // 短名（base + 截断）
	linesTotal int
	linesDone  int
	issues     int

	// 输出控制
	lastLen   int
	lastFlush time.Time

	mu sync.Mutex
}

// 进程级终端（可选，全局设置后供 pipeline 旁路调用）。
var (
	termMu sync.RWMutex
	term   *Terminal
)

// SetTerminal 设置全局终端指针（nil 可清除）。
func SetTerminal(t *Terminal) { termMu.Lock(); term = t; termMu.Unlock() }

// GetTerminal 返回全局终端（可能为 nil）。
func GetTerminal() *Terminal { termMu.RLock(); defer termMu.RUnlock(); return term }

// NewTerminal 构造终端提示器。
// enabled=false 时总是 no-op。
func NewTerminal(w io.Writer, enabled bool) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	t := &Terminal{w: w, enabled: enabled}
	// CI 环境视为非 TTY
	if os.Getenv("CI") != "" {
		t.isTTY = false
	} else if f, ok := w.(*os.File); ok {
		if fi, err := f.Stat(); err == nil {
			t.isTTY = fi.Mode()&os.ModeCharDevice != 0
		}
	}
	r := lipgloss.NewRenderer(w)
	t.okStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	t.failStyle = r.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	t.tagStyle = r.NewStyle().Foreground(lipgloss.Color("69"))
	t.dimStyle = r.NewStyle().Foreground(lipgloss.Color("241"))
	return t
}

// style 仅在 TTY 下着色。
func (t *Terminal) style(s lipgloss.Style, text string) string {
	if !t.isTTY {
		return text
	}
	return s.Render(text)
}

// RunStart: 记录运行上下文（动作表来源）。
func (t *Terminal) RunStart(table string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.table = shortenBase(table, 48)
	t.runStart = time.Now()
	t.println(fmt.Sprintf("%s table=%s", t.style(t.tagStyle, "[run]"), safe(t.table)))
}

// FileStart: 标记当前输入与待处理行数。
func (t *Terminal) FileStart(fileID string, lines int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	t.curFileID = shortenBase(fileID, 48)
	t.linesTotal = lines
	t.linesDone = 0
	t.issues = 0
	if !t.isTTY {
		t.println(fmt.Sprintf("[file] %s | 行数=%d", t.curFileID, lines))
	}
}

// FileProgress: 逐行进度（≥100ms 节流，仅 TTY）。
func (t *Terminal) FileProgress(done, total, issues int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled || !t.isTTY {
		return
	}
	t.linesDone = done
	t.linesTotal = total
	t.issues = issues
	now := time.Now()
	if now.Sub(t.lastFlush) < 100*time.Millisecond {
		return
	}
	t.lastFlush = now
	line := fmt.Sprintf("%s %s | 进度 %d/%d | 问题 %d | 用时 %s",
		t.style(t.tagStyle, "[file]"), t.curFileID, t.linesDone, t.linesTotal, t.issues, formatSince(t.runStart))
	t.printInline(line)
}

// FileFinish: 完成当前输入（立即刷新并换行）。
func (t *Terminal) FileFinish(ok bool, emitted int, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	status := t.style(t.okStyle, "[done]")
	if !ok {
		status = t.style(t.failStyle, "[fail]")
	}
	// 先清掉可能的行尾
	if t.isTTY && t.lastLen > 0 {
		t.printInline("")
	}
	t.println(fmt.Sprintf("%s %s | 事件 %d | 总用时 %s", status, t.curFileID, emitted, formatDur(dur)))
}

// Issue: 打印一条被报告的行级问题（kind=malformed|unresolved）。
func (t *Terminal) Issue(kind string, line int, text string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	if t.isTTY && t.lastLen > 0 {
		t.printInline("")
	}
	t.println(fmt.Sprintf("%s line %d: %s", t.style(t.failStyle, "["+kind+"]"), line, t.style(t.dimStyle, safe(text))))
}

// Summary: 结束总览（计数器）。
func (t *Terminal) Summary(ok bool, lines, emitted, filtered, malformed, unresolved int, dur time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}
	tag := t.style(t.okStyle, "[ok]")
	if !ok {
		tag = t.style(t.failStyle, "[fail]")
	}
	t.println(fmt.Sprintf("%s 行 %d | 事件 %d | 过滤 %d | 格式错误 %d | 未解析 %d | 总用时 %s",
		tag, lines, emitted, filtered, malformed, unresolved, formatDur(dur)))
}

// 内部输出工具
func (t *Terminal) println(s string) {
	if t == nil || !t.enabled {
		return
	}
	if _, err := io.WriteString(t.w, s+"\n"); err != nil {
		// 写失败即禁用
		t.enabled = false
	}
	t.lastLen = 0
}

func (t *Terminal) printInline(s string) {
	if t == nil || !t.enabled {
		return
	}
	// 清尾：若新行比旧短，填充空格覆盖
	pad := 0
	if l := lipgloss.Width(s); t.lastLen > l {
		pad = t.lastLen - l
	}
	var b strings.Builder
	b.WriteByte('\r')
	b.WriteString(s)
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	if _, err := io.WriteString(t.w, b.String()); err != nil {
		t.enabled = false
		return
	}
	t.lastLen = lipgloss.Width(s)
}

// shortenBase: 取基名并按可见宽度截断（尾部省略号）。
func shortenBase(s string, max int) string {
	if max <= 0 {
		return ""
	}
	base := filepath.Base(strings.TrimSpace(s))
	if lipgloss.Width(base) <= max {
		return base
	}
	cut := max - 1
	if cut < 1 {
		cut = 1
	}
	rs := []rune(base)
	if len(rs) <= cut {
		return string(rs)
	}
	return string(rs[:cut]) + "…"
}

func safe(s string) string {
	// 避免换行等控制字符污染终端
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

func formatSince(t0 time.Time) string { return formatDur(time.Since(t0)) }

func formatDur(d time.Duration) string {
	if d < time.Second {
		ms := d.Milliseconds()
		if ms <= 0 {
			ms = 0
		}
		return fmt.Sprintf("%dms", ms)
	}
	s := float64(d.Milliseconds()) / 1000.0
	return fmt.Sprintf("%.1fs", s)
}
