package contract

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

// TestNormalizeFileID 验证路径规范化逻辑。
func TestNormalizeFileID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"本地分隔符", filepath.Join("a", "b", "c"), "a/b/c"},
		{"相对回退", "./x/../y", "y"},
		{"空串", "", "."},
		{"Windows路径", "C:\\builds\\pvz\\4gate.txt", "C:/builds/pvz/4gate.txt"},
		{"清理多余斜杠", "builds//pvz///4gate.txt", "builds/pvz/4gate.txt"},
		{"混合分隔符", "builds\\pvz/./4gate.txt", "builds/pvz/4gate.txt"},
		{"空格路径", "My Builds\\Two Base.txt", "My Builds/Two Base.txt"},
		{"复杂父目录", "a\\b\\..\\..\\..\\d", "../d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeFileID(tt.input); string(got) != tt.expected {
				t.Errorf("NormalizeFileID(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

// TestLineErrorUnwrap 行级错误应可被 errors.Is 识别为对应哨兵。
func TestLineErrorUnwrap(t *testing.T) {
	m := Malformed(7, "99 no-time-field", nil)
	if !errors.Is(m, ErrMalformedLine) {
		t.Fatalf("malformed 应匹配 ErrMalformedLine")
	}
	if errors.Is(m, ErrUnresolvedAction) {
		t.Fatalf("malformed 不应匹配 ErrUnresolvedAction")
	}
	if !strings.Contains(m.Error(), "line 7") {
		t.Fatalf("错误信息缺少行号: %s", m.Error())
	}

	u := Unresolved(3, "Mystery Unit")
	if !errors.Is(u, ErrUnresolvedAction) {
		t.Fatalf("unresolved 应匹配 ErrUnresolvedAction")
	}
	var le *LineError
	if !errors.As(u, &le) || le.Line != 3 || le.Kind != KindUnresolved {
		t.Fatalf("errors.As 失败: %+v", le)
	}
}

// TestMalformedWithCause 带原因的格式错误仍保留哨兵与原因文本。
func TestMalformedWithCause(t *testing.T) {
	m := Malformed(2, "00:75 12 Nexus", errors.New("seconds out of range"))
	if !errors.Is(m, ErrMalformedLine) {
		t.Fatalf("应匹配 ErrMalformedLine")
	}
	if !strings.Contains(m.Error(), "seconds out of range") {
		t.Fatalf("原因丢失: %s", m.Error())
	}
}

// TestLineErrorZeroErr Err 为空时按 Kind 回退哨兵。
func TestLineErrorZeroErr(t *testing.T) {
	e := &LineError{Line: 1, Kind: KindUnresolved}
	if !errors.Is(e, ErrUnresolvedAction) {
		t.Fatalf("Kind 回退失败")
	}
	if (&LineError{Line: 1, Kind: "other"}).Unwrap() != nil {
		t.Fatalf("未知 Kind 应返回 nil")
	}
}
