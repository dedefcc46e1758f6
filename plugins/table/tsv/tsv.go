// Package tsv 从制表符分隔文件装载动作表。
package tsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"saltenc/pkg/contract"
)

// Options: 列名可配置；空值使用默认。
type Options struct {
	KindColumn      string `json:"kind_column"`
	ItemColumn      string `json:"item_column"`
	CanonicalColumn string `json:"canonical_column"`
	SourceColumn    string `json:"source_column"`
}

// 默认列名与原始 salt_map.tsv 一致。
const (
	DefaultKindColumn      = "type"
	DefaultItemColumn      = "item_id"
	DefaultCanonicalColumn = "salt_name"
	DefaultSourceColumn    = "burny_name"
)

// Loader 实现 contract.TableLoader。
type Loader struct {
	cols [4]string // kind, item, canonical, source
}

// New 创建 TSV 装载器。
func New(opts *Options) *Loader {
	var o Options
	if opts != nil {
		o = *opts
	}
	return &Loader{cols: [4]string{
		orDefault(o.KindColumn, DefaultKindColumn),
		orDefault(o.ItemColumn, DefaultItemColumn),
		orDefault(o.CanonicalColumn, DefaultCanonicalColumn),
		orDefault(o.SourceColumn, DefaultSourceColumn),
	}}
}

// Load 打开 source 并装载全部行；句柄在返回前关闭。
func (l *Loader) Load(ctx context.Context, source string) ([]contract.ActionRow, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: table source not set", contract.ErrResource)
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contract.ErrResource, err)
	}
	defer f.Close()
	return l.Decode(ctx, f)
}

// Decode 从任意 io.Reader 解析 TSV（首行为表头）。
func (l *Loader) Decode(ctx context.Context, r io.Reader) ([]contract.ActionRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	head, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: table is empty", contract.ErrResource)
		}
		return nil, fmt.Errorf("%w: read header: %w", contract.ErrResource, err)
	}
	idx, err := l.columnIndex(head)
	if err != nil {
		return nil, err
	}

	var rows []contract.ActionRow
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", contract.ErrResource, err)
		}
		line, _ := cr.FieldPos(0)
		row, err := l.row(rec, idx, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (l *Loader) columnIndex(head []string) ([4]int, error) {
	pos := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}
	var idx [4]int
	var missing []string
	for i, name := range l.cols {
		p, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[i] = p
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("%w: missing column(s) %s", contract.ErrResource, strings.Join(missing, ", "))
	}
	return idx, nil
}

func (l *Loader) row(rec []string, idx [4]int, line int) (contract.ActionRow, error) {
	get := func(i int) (string, error) {
		if idx[i] >= len(rec) {
			return "", fmt.Errorf("%w: line %d: missing value for %s", contract.ErrResource, line, l.cols[i])
		}
		return rec[idx[i]], nil
	}
	var vals [4]string
	for i := range vals {
		v, err := get(i)
		if err != nil {
			return contract.ActionRow{}, err
		}
		vals[i] = v
	}
	kind, err := id(vals[0], l.cols[0], line)
	if err != nil {
		return contract.ActionRow{}, err
	}
	item, err := id(vals[1], l.cols[1], line)
	if err != nil {
		return contract.ActionRow{}, err
	}
	// Source 原样保留（不 trim），前缀匹配以表内容为准
	return contract.ActionRow{Kind: kind, ItemID: item, Canonical: vals[2], Source: vals[3]}, nil
}

func id(s, col string, line int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: line %d: %s %q is not an integer", contract.ErrResource, line, col, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: line %d: %s %d is negative", contract.ErrResource, line, col, n)
	}
	return n, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

var _ contract.TableLoader = (*Loader)(nil)
