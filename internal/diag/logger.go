package diag

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 默认日志目录与轮转阈值。
const (
	defaultLogDir   = "logs"
	defaultLogBytes = 10 * 1024 * 1024
)

// Logger 为组件/阶段结构化日志器：zap JSON 编码，单行写入轮转文件。
// 字段约定：corr_id, comp, stage(start|finish|error|warn), code, dur_ms, count, file_id, kv。
type Logger struct {
	z     *zap.Logger
	level zap.AtomicLevel
	sink  *RotatingFile
}

// NewLogger 通过配置的 level 初始化，并将日志写入 logs/saltenc-current.txt，10MiB 轮转。
func NewLogger(corrID, level string) *Logger {
	sink := NewRotatingFile(defaultLogDir, defaultLogBytes)
	l := NewLoggerTo(corrID, level, sink)
	l.sink = sink
	return l
}

// NewLoggerTo 将日志写到任意 io.Writer（测试或 stderr 后备）。
func NewLoggerTo(corrID, level string, w io.Writer) *Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := zap.NewAtomicLevelAt(parseLevel(level))
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(w), lvl)
	z := zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr))).With(zap.String("corr_id", corrID))
	return &Logger{z: z, level: lvl}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     utcTime,
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
}

func utcTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339))
}

// parseLevel 未知取值回落到 info。
func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Level 返回当前级别字符串。
func (l *Logger) Level() string { return l.level.Level().String() }

// Sync 刷新并关闭文件 sink。
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	err := l.z.Sync()
	if l.sink != nil {
		if cerr := l.sink.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func kvFields(kv map[string]string) []zap.Field {
	if len(kv) == 0 {
		return nil
	}
	return []zap.Field{zap.Any("kv", kv)}
}

func (l *Logger) emit(lv zapcore.Level, comp, stage, msg string, fields ...zap.Field) {
	if ce := l.z.Check(lv, msg); ce != nil {
		base := []zap.Field{zap.String("comp", comp), zap.String("stage", stage)}
		ce.Write(append(base, fields...)...)
	}
}

func optFileID(fileID string) []zap.Field {
	if fileID == "" {
		return nil
	}
	return []zap.Field{zap.String("file_id", fileID)}
}

func durFields(durSince *time.Time) []zap.Field {
	if durSince == nil {
		return nil
	}
	return []zap.Field{zap.Int64("dur_ms", time.Since(*durSince).Milliseconds())}
}

// Start 记录 start 事件；返回计时器用于 Finish。
func (l *Logger) Start(comp, msg string) *Timer {
	l.emit(zapcore.InfoLevel, comp, "start", msg)
	return &Timer{l: l, comp: comp, t0: time.Now()}
}

// StartWith 记录带 file_id 的 start。
func (l *Logger) StartWith(comp, msg, fileID string) *Timer {
	l.emit(zapcore.InfoLevel, comp, "start", msg, optFileID(fileID)...)
	return &Timer{l: l, comp: comp, fileID: fileID, t0: time.Now()}
}

// StartWithKV 记录带 file_id 与键值的 start。
func (l *Logger) StartWithKV(comp, msg, fileID string, kv map[string]string) *Timer {
	l.emit(zapcore.InfoLevel, comp, "start", msg, append(optFileID(fileID), kvFields(kv)...)...)
	return &Timer{l: l, comp: comp, fileID: fileID, t0: time.Now()}
}

// Error 记录 error 事件。
func (l *Logger) Error(comp, code, msg string, durSince *time.Time) {
	l.emit(zapcore.ErrorLevel, comp, "error", msg, append([]zap.Field{zap.String("code", code)}, durFields(durSince)...)...)
}

// ErrorWith 支持 file_id。
func (l *Logger) ErrorWith(comp, code, msg string, durSince *time.Time, fileID string) {
	fs := append([]zap.Field{zap.String("code", code)}, durFields(durSince)...)
	l.emit(zapcore.ErrorLevel, comp, "error", msg, append(fs, optFileID(fileID)...)...)
}

// ErrorWithKV 支持附带键值对（例如出错行号、表来源）。
func (l *Logger) ErrorWithKV(comp, code, msg string, durSince *time.Time, fileID string, kv map[string]string) {
	fs := append([]zap.Field{zap.String("code", code)}, durFields(durSince)...)
	fs = append(fs, optFileID(fileID)...)
	l.emit(zapcore.ErrorLevel, comp, "error", msg, append(fs, kvFields(kv)...)...)
}

// WarnLine 记录被容忍的行级问题（skip/sentinel 策略下）。
func (l *Logger) WarnLine(comp, code, fileID string, line int, text string) {
	l.emit(zapcore.WarnLevel, comp, "warn", text,
		zap.String("code", code), zap.String("file_id", fileID), zap.Int("line", line))
}

// InfoFinish 在已有起点的情况下记录 finish。
func (l *Logger) InfoFinish(comp, msg string, start time.Time, count int64) {
	l.emit(zapcore.InfoLevel, comp, "finish", msg,
		zap.Int64("dur_ms", time.Since(start).Milliseconds()), zap.Int64("count", count))
}

// DebugStart 输出调试级别的 start 事件（仅在 level=debug 时生效）。
func (l *Logger) DebugStart(comp, msg, fileID string, kv map[string]string) {
	l.emit(zapcore.DebugLevel, comp, "start", msg, append(optFileID(fileID), kvFields(kv)...)...)
}

// Timer 用于 start→finish 计时。
type Timer struct {
	l      *Logger
	comp   string
	fileID string
	t0     time.Time
}

// Finish 记录 finish；可选 count。
func (t *Timer) Finish(msg string, count int64) {
	if t == nil || t.l == nil {
		return
	}
	fs := []zap.Field{zap.Int64("dur_ms", time.Since(t.t0).Milliseconds()), zap.Int64("count", count)}
	t.l.emit(zapcore.InfoLevel, t.comp, "finish", msg, append(fs, optFileID(t.fileID)...)...)
}

// Since 返回计时器起点，供 Error 的 durSince 使用。
func (t *Timer) Since() *time.Time {
	if t == nil {
		return nil
	}
	return &t.t0
}
