package salt

import (
	"errors"
	"testing"

	"saltenc/pkg/contract"
)

func TestBuildName(t *testing.T) {
	cases := map[string]string{
		"4 gate.txt":                "4_gate",
		"builds/PvZ Two Base.v2.txt": "PvZ_Two_Base",
		"C:\\builds\\cheese.txt":     "cheese",
		"  padded name .txt":         "padded_name",
		"odd|name.txt":               "odd_name",
		"noext":                      "noext",
	}
	for in, want := range cases {
		if got := BuildName(in); got != want {
			t.Fatalf("BuildName(%q)=%q 期望 %q", in, got, want)
		}
	}
}

func TestValidateHeader(t *testing.T) {
	ok := contract.Header{BuildName: "x", Author: "me", Description: "macro build"}
	if err := ValidateHeader(ok); err != nil {
		t.Fatalf("合法头部被拒: %v", err)
	}
	bad := []contract.Header{
		{BuildName: "a|b"},
		{Author: "line\nbreak"},
		{Description: "cr\r"},
	}
	for _, h := range bad {
		if err := ValidateHeader(h); !errors.Is(err, contract.ErrInvalidInput) {
			t.Fatalf("期望 ErrInvalidInput，实得 %v (%+v)", err, h)
		}
	}
}

func TestDocumentString(t *testing.T) {
	d := Document{
		Header: contract.Header{BuildName: "b", Author: "a", Description: "d"},
		Codes:  []string{"\"  !%", "#!$!&"},
	}
	want := "%b|a|d|~\"  !%#!$!&"
	if got := d.String(); got != want {
		t.Fatalf("渲染 %q 期望 %q", got, want)
	}
	empty := Document{}
	if got := empty.String(); got != "%|||~" {
		t.Fatalf("空文档 %q", got)
	}
}
