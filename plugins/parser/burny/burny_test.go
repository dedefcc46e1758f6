package burny

import (
	"errors"
	"math"
	"strings"
	"testing"

	"saltenc/pkg/contract"
	"saltenc/pkg/salt"
)

func TestParseOK(t *testing.T) {
	p := New(nil)
	cases := []struct {
		in   string
		want contract.BuildEvent
	}{
		{"00:00 12 Nexus", contract.BuildEvent{Line: 1, Minutes: 0, Seconds: 0, Supply: 12, Action: "Nexus"}},
		{"03:45 40 Warp Gate Research Level 2", contract.BuildEvent{Line: 1, Minutes: 3, Seconds: 45, Supply: 40, Action: "Warp Gate Research Level 2"}},
		{"12:59 195  Stalker  ", contract.BuildEvent{Line: 1, Minutes: 12, Seconds: 59, Supply: 195, Action: " Stalker  "}},
		{"99:00 0 x", contract.BuildEvent{Line: 1, Minutes: 99, Seconds: 0, Supply: 0, Action: "x"}},
	}
	for _, tc := range cases {
		got, err := p.Parse(1, tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q)=%+v 期望 %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	p := New(nil)
	bad := []string{
		"99 no-time-field",
		"0:00 12 Nexus",
		"00:00 Nexus",
		"00:00 12",
		"00:00 12 ",
		"00:61 12 Nexus",
		"00:00 12 Nex\xffus",
		"",
	}
	for _, in := range bad {
		_, err := p.Parse(9, in)
		if !errors.Is(err, contract.ErrMalformedLine) {
			t.Fatalf("Parse(%q) 期望 ErrMalformedLine，实得 %v", in, err)
		}
		var le *contract.LineError
		if !errors.As(err, &le) || le.Line != 9 || le.Text != in {
			t.Fatalf("行级错误缺少行号/原文: %+v", le)
		}
		if !strings.Contains(err.Error(), "line 9") {
			t.Fatalf("错误信息缺少行号: %v", err)
		}
	}
}

// 超大补给值不视为格式错误，编码为哨兵
func TestParseSupplyOverflow(t *testing.T) {
	got, err := New(nil).Parse(4, "00:00 99999999999999999999 Nexus")
	if err != nil {
		t.Fatalf("超大补给不应报错: %v", err)
	}
	if got.Supply != math.MaxInt || got.Action != "Nexus" {
		t.Fatalf("补给应截为上限: %+v", got)
	}
	if c := salt.EncodeSupply(got.Supply); c != salt.Sentinel {
		t.Fatalf("超大补给应编码为哨兵，实得 %q", c)
	}
}
