// Package prefix 在已装载的动作表中按前缀解析动作。
package prefix

import (
	"regexp"
	"strings"

	"saltenc/pkg/contract"
)

// Options: 预留占位。
type Options struct {
	// KeepLevel 为 true 时不截断 "Level N" 后缀（调试用）。
	KeepLevel bool `json:"keep_level"`
}

// Resolver 首个命中即返回：表顺序即优先级，不做最长匹配。
type Resolver struct {
	rows      []contract.ActionRow
	keepLevel bool
}

// New 基于已装载的表构造解析器；rows 只读共享，不复制。
func New(rows []contract.ActionRow, opts *Options) *Resolver {
	r := &Resolver{rows: rows}
	if opts != nil {
		r.keepLevel = opts.KeepLevel
	}
	return r
}

var levelRe = regexp.MustCompile(`\bLevel\s*\d`)

// Normalize 去首尾空白；若含 "Level <数字>"，仅保留其前部分。
// "Upgrade Level 2" 与 "Upgrade Level 3" 归一为同一文本。
func Normalize(action string) string {
	s := strings.TrimSpace(action)
	if loc := levelRe.FindStringIndex(s); loc != nil {
		s = strings.TrimSpace(s[:loc[0]])
	}
	return s
}

// Resolve 返回首个 Source 为归一文本前缀的行。空 Source 永不命中。
func (r *Resolver) Resolve(action string) (contract.Ident, error) {
	s := strings.TrimSpace(action)
	if !r.keepLevel {
		s = Normalize(s)
	}
	for _, row := range r.rows {
		if row.Source == "" {
			continue
		}
		if strings.HasPrefix(s, row.Source) {
			return contract.Ident{Kind: row.Kind, ItemID: row.ItemID}, nil
		}
	}
	return contract.Ident{}, contract.ErrUnresolvedAction
}

var _ contract.Resolver = (*Resolver)(nil)
