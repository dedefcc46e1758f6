package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"saltenc/pkg/contract"
)

// TestWriteAtomic 原子写入且不残留临时文件
func TestWriteAtomic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := New(&Options{OutputDir: dir})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := w.Write(context.Background(), "4gate", strings.NewReader("%4gate|||~")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "4gate.salt"))
	if err != nil || string(b) != "%4gate|||~" {
		t.Fatalf("unexpected file %v %q", err, string(b))
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("tmp file not cleaned: %s", e.Name())
		}
	}
}

// 目标已存在时应替换为新内容
func TestWriteAtomicReplaceExisting(t *testing.T) {
	dir := t.TempDir()
	w, _ := New(&Options{OutputDir: dir, Ext: ".txt"})
	for _, v := range []string{"v1", "v2"} {
		if err := w.Write(context.Background(), "b", strings.NewReader(v)); err != nil {
			t.Fatalf("write %s: %v", v, err)
		}
	}
	b, _ := os.ReadFile(filepath.Join(dir, "b.txt"))
	if string(b) != "v2" {
		t.Fatalf("expect v2, got %q", string(b))
	}
}

// TestWriteOverwrite 非原子覆盖写
func TestWriteOverwrite(t *testing.T) {
	dir := t.TempDir()
	off := false
	w, _ := New(&Options{OutputDir: dir, Atomic: &off})
	if err := w.Write(context.Background(), "b", strings.NewReader("longer content")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Write(context.Background(), "b", strings.NewReader("short")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, _ := os.ReadFile(filepath.Join(dir, "b.salt"))
	if string(b) != "short" {
		t.Fatalf("应截断旧内容: %q", string(b))
	}
}

// TestMapPathInvalid 非单段名称被拒
func TestMapPathInvalid(t *testing.T) {
	w, _ := New(&Options{OutputDir: t.TempDir()})
	for _, id := range []string{"", ".", "..", "a/b", `a\b`, "../x"} {
		if err := w.Write(context.Background(), contract.ArtifactID(id), strings.NewReader("x")); !errors.Is(err, contract.ErrPathInvalid) {
			t.Fatalf("id %q expect ErrPathInvalid, got %v", id, err)
		}
	}
}

// TestNewRequiresDir OutputDir 必填
func TestNewRequiresDir(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expect ErrInvalid")
	}
	if _, err := New(&Options{OutputDir: " "}); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expect ErrInvalid")
	}
}

// TestWriteCanceled 取消后不产生文件
func TestWriteCanceled(t *testing.T) {
	dir := t.TempDir()
	w, _ := New(&Options{OutputDir: dir})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Write(ctx, "b", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expect canceled, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "b.salt")); !os.IsNotExist(err) {
		t.Fatalf("取消后不应生成文件")
	}
}
