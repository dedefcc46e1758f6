package lines

import (
	"context"
	"errors"
	"strings"
	"testing"

	"saltenc/pkg/contract"
)

const sample = "00:00 12 Nexus\r\n00:12 13 Probe\n\n   \n00:18 14 Pylon"

// TestSplitSuccess 行号与源文件一致，空行跳过，CRLF 归一，末行无换行也保留
func TestSplitSuccess(t *testing.T) {
	recs, err := New(nil).Split(context.Background(), "a.txt", strings.NewReader(sample))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("unexpected recs %+v", recs)
	}
	if recs[0].Text != "00:00 12 Nexus" || recs[0].Line != 1 {
		t.Fatalf("CRLF 未归一: %+v", recs[0])
	}
	if recs[2].Line != 5 || recs[2].Text != "00:18 14 Pylon" {
		t.Fatalf("行号错误: %+v", recs[2])
	}
	if recs[1].FileID != "a.txt" {
		t.Fatalf("file id 丢失")
	}
}

// TestSplitEmpty 空输入
func TestSplitEmpty(t *testing.T) {
	recs, err := New(nil).Split(context.Background(), "a.txt", strings.NewReader(""))
	if err != nil || len(recs) != 0 {
		t.Fatalf("empty: %v %v", err, recs)
	}
}

// TestSplitTooLarge 超出 MaxLineBytes
func TestSplitTooLarge(t *testing.T) {
	s := New(&Options{MaxLineBytes: 5})
	if _, err := s.Split(context.Background(), "a.txt", strings.NewReader("00:00 12 Nexus\n")); err == nil {
		t.Fatalf("expect size error")
	}
}

// TestSplitExtFilter 扩展名过滤（STDIN 不受限）
func TestSplitExtFilter(t *testing.T) {
	s := New(&Options{AllowExts: []string{".TXT"}})
	recs, err := s.Split(context.Background(), "a.md", strings.NewReader(sample))
	if !errors.Is(err, contract.ErrInvalidInput) || recs != nil {
		t.Fatalf("非允许扩展名应报错: %v %v", err, recs)
	}
	recs, err = s.Split(context.Background(), "b.txt", strings.NewReader(sample))
	if err != nil || len(recs) != 3 {
		t.Fatalf("允许扩展名失败: %v %d", err, len(recs))
	}
	recs, err = s.Split(context.Background(), "stdin", strings.NewReader(sample))
	if err != nil || len(recs) != 3 {
		t.Fatalf("stdin 不应受扩展名限制: %v %d", err, len(recs))
	}
}

// TestSplitCtxCancel 上下文取消
func TestSplitCtxCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).Split(ctx, "a.txt", strings.NewReader(sample))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expect ctx cancel, got %v", err)
	}
}
