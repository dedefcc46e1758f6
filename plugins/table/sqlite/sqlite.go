// Package sqlite 从 SQLite 数据库装载动作表（按 rowid 保持插入顺序）。
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"saltenc/pkg/contract"
)

// Options: 表名与列名；空值使用默认（与 TSV 表头一致）。
type Options struct {
	Table           string `json:"table"`
	KindColumn      string `json:"kind_column"`
	ItemColumn      string `json:"item_column"`
	CanonicalColumn string `json:"canonical_column"`
	SourceColumn    string `json:"source_column"`
}

// Loader 实现 contract.TableLoader。
type Loader struct {
	table string
	cols  [4]string
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// New 创建 SQLite 装载器；标识符必须为简单名称。
func New(opts *Options) (*Loader, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	l := &Loader{
		table: orDefault(o.Table, "salt_map"),
		cols: [4]string{
			orDefault(o.KindColumn, "type"),
			orDefault(o.ItemColumn, "item_id"),
			orDefault(o.CanonicalColumn, "salt_name"),
			orDefault(o.SourceColumn, "burny_name"),
		},
	}
	for _, id := range append([]string{l.table}, l.cols[:]...) {
		if !identRe.MatchString(id) {
			return nil, fmt.Errorf("%w: invalid sqlite identifier %q", contract.ErrInvalidInput, id)
		}
	}
	return l, nil
}

// Load 以只读方式打开数据库并读取全部行。
func (l *Loader) Load(ctx context.Context, source string) ([]contract.ActionRow, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: table source not set", contract.ErrResource)
	}
	// mode=ro 下缺失文件的报错不含路径信息，这里先行确认
	if _, err := os.Stat(source); err != nil {
		return nil, fmt.Errorf("%w: %w", contract.ErrResource, err)
	}
	db, err := sql.Open("sqlite", "file:"+source+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %w", contract.ErrResource, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	q := fmt.Sprintf(`SELECT "%s", "%s", "%s", "%s" FROM "%s" ORDER BY rowid`,
		l.cols[0], l.cols[1], l.cols[2], l.cols[3], l.table)
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", contract.ErrResource, l.table, err)
	}
	defer rows.Close()

	var out []contract.ActionRow
	n := 0
	for rows.Next() {
		n++
		var (
			kind, item        int64
			canonical, source sql.NullString
		)
		if err := rows.Scan(&kind, &item, &canonical, &source); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", contract.ErrResource, n, err)
		}
		if kind < 0 || item < 0 {
			return nil, fmt.Errorf("%w: row %d: negative id (%d, %d)", contract.ErrResource, n, kind, item)
		}
		out = append(out, contract.ActionRow{
			Kind:      int(kind),
			ItemID:    int(item),
			Canonical: canonical.String,
			Source:    source.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iter %s: %w", contract.ErrResource, l.table, err)
	}
	return out, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

var _ contract.TableLoader = (*Loader)(nil)
