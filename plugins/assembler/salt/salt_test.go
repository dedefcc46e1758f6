package salt

import (
	"context"
	"errors"
	"io"
	"testing"

	"saltenc/pkg/contract"
)

// TestAssembleSuccess 头部 + 事件码无分隔拼接
func TestAssembleSuccess(t *testing.T) {
	a, err := New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	h := contract.Header{BuildName: "4gate", Author: "pw", Description: "pvz"}
	r, err := a.Assemble(context.Background(), h, []string{"\"  !%", "#!,!&"})
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	b, _ := io.ReadAll(r)
	if string(b) != "%4gate|pw|pvz|~\"  !%#!,!&" {
		t.Fatalf("unexpected output %q", string(b))
	}
}

// TestAssembleEmpty 无事件时只有头部
func TestAssembleEmpty(t *testing.T) {
	a, _ := New(nil)
	r, err := a.Assemble(context.Background(), contract.Header{BuildName: "x"}, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	b, _ := io.ReadAll(r)
	if string(b) != "%x|||~" {
		t.Fatalf("unexpected %q", string(b))
	}
}

// TestAssembleBadHeader 头部含分隔符
func TestAssembleBadHeader(t *testing.T) {
	a, _ := New(nil)
	_, err := a.Assemble(context.Background(), contract.Header{Author: "a|b"}, nil)
	if !errors.Is(err, contract.ErrInvalidInput) {
		t.Fatalf("expect ErrInvalidInput, got %v", err)
	}
}

// TestAssembleBadCode 非定宽或表外字符
func TestAssembleBadCode(t *testing.T) {
	a, _ := New(nil)
	for _, c := range []string{"abcd", "abcdef", "abc~d", "ab\ncd"} {
		if _, err := a.Assemble(context.Background(), contract.Header{}, []string{c}); !errors.Is(err, contract.ErrSeqInvalid) {
			t.Fatalf("%q: expect ErrSeqInvalid, got %v", c, err)
		}
	}
}

// TestAssembleCanceled 已取消
func TestAssembleCanceled(t *testing.T) {
	a, _ := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Assemble(ctx, contract.Header{}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expect canceled, got %v", err)
	}
}
