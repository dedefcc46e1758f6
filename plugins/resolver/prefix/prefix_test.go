package prefix

import (
	"errors"
	"testing"

	"saltenc/pkg/contract"
)

var table = []contract.ActionRow{
	{Kind: 1, ItemID: 5, Canonical: "Nexus", Source: "Nexus"},
	{Kind: 0, ItemID: 3, Canonical: "Probe", Source: "Probe"},
	{Kind: 2, ItemID: 11, Canonical: "Warp Gate", Source: "Warp Gate Research"},
	{Kind: 2, ItemID: 20, Canonical: "Ground Weapons", Source: "Protoss Ground Weapons"},
	{Kind: 1, ItemID: 9, Canonical: "Gateway", Source: "Gate"},
	{Kind: 1, ItemID: 8, Canonical: "Gateway", Source: "Gateway"},
	{Kind: 9, ItemID: 9, Canonical: "blank", Source: ""},
}

func TestResolveExact(t *testing.T) {
	r := New(table, nil)
	id, err := r.Resolve("Nexus")
	if err != nil || id != (contract.Ident{Kind: 1, ItemID: 5}) {
		t.Fatalf("Nexus: %+v %v", id, err)
	}
	id, err = r.Resolve("  Probe  ")
	if err != nil || id != (contract.Ident{Kind: 0, ItemID: 3}) {
		t.Fatalf("空白应不影响匹配: %+v %v", id, err)
	}
}

func TestResolveLevelSuffix(t *testing.T) {
	r := New(table, nil)
	for _, a := range []string{"Warp Gate Research Level 2", "Warp Gate Research Level 3", "Warp Gate Research"} {
		id, err := r.Resolve(a)
		if err != nil || id != (contract.Ident{Kind: 2, ItemID: 11}) {
			t.Fatalf("%q: %+v %v", a, id, err)
		}
	}
	a, _ := r.Resolve("Protoss Ground Weapons Level 1")
	b, _ := r.Resolve("Protoss Ground Weapons Level 2")
	if a != b || a.ItemID != 20 {
		t.Fatalf("不同等级应解析为同一项: %+v %+v", a, b)
	}
}

// 首个命中优先：Gate 排在 Gateway 之前，因此 Gateway 命中 Gate 行
func TestResolveFirstMatchWins(t *testing.T) {
	r := New(table, nil)
	id, err := r.Resolve("Gateway")
	if err != nil || id.ItemID != 9 {
		t.Fatalf("应命中首行 Gate: %+v %v", id, err)
	}
}

func TestResolveNotFound(t *testing.T) {
	r := New(table, nil)
	_, err := r.Resolve("Zergling")
	if !errors.Is(err, contract.ErrUnresolvedAction) {
		t.Fatalf("expect ErrUnresolvedAction, got %v", err)
	}
	// 空 Source 行不能充当通配
	if _, err := New([]contract.ActionRow{{Source: ""}}, nil).Resolve("anything"); err == nil {
		t.Fatalf("空 Source 不应命中")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"Upgrade Level 2":          "Upgrade",
		" Upgrade Level3 ":         "Upgrade",
		"Leveled Ground":           "Leveled Ground",
		"Level Up Something":       "Level Up Something",
		"Terran Infantry Armor":    "Terran Infantry Armor",
		"Shields Level 1 (queued)": "Shields",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q)=%q 期望 %q", in, got, want)
		}
	}
}

func TestKeepLevel(t *testing.T) {
	r := New([]contract.ActionRow{{Kind: 3, ItemID: 1, Source: "Shields Level 2"}}, &Options{KeepLevel: true})
	if _, err := r.Resolve("Shields Level 2"); err != nil {
		t.Fatalf("KeepLevel 下应整体匹配: %v", err)
	}
}
