package salt

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"saltenc/pkg/contract"
)

// 头部分隔符。
const (
	headerStart = "%"
	fieldSep    = "|"
	headerEnd   = "|~"
)

var nameJunk = regexp.MustCompile(`[\s|]+`)

// BuildName 由输入文件路径推导构建名：取基名首个 '.' 之前的部分，
// 去首尾空白，空白串与 '|' 替换为 '_'。
func BuildName(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return SanitizeName(base)
}

// SanitizeName 清理显式给定的构建名（规则同 BuildName）。
func SanitizeName(s string) string {
	return nameJunk.ReplaceAllString(strings.TrimSpace(s), "_")
}

// ValidateHeader 头部字段不得包含字段分隔符或行终止符。
func ValidateHeader(h contract.Header) error {
	fields := []struct{ name, v string }{
		{"build_name", h.BuildName},
		{"author", h.Author},
		{"description", h.Description},
	}
	for _, f := range fields {
		if strings.ContainsAny(f.v, "|\r\n") {
			return fmt.Errorf("%w: header %s contains '|' or line break: %q", contract.ErrInvalidInput, f.name, f.v)
		}
	}
	return nil
}

// HeaderString 渲染 "%name|author|description|~"（不做校验）。
func HeaderString(h contract.Header) string {
	return headerStart + h.BuildName + fieldSep + h.Author + fieldSep + h.Description + headerEnd
}

// Document 为完整 SALT 文档：头部 + 按序事件码。
type Document struct {
	Header contract.Header
	Codes  []string
}

// String 渲染文档；事件码之间无分隔符。
func (d Document) String() string {
	var b strings.Builder
	b.Grow(len(HeaderString(d.Header)) + len(d.Codes)*CodeLen)
	b.WriteString(HeaderString(d.Header))
	for _, c := range d.Codes {
		b.WriteString(c)
	}
	return b.String()
}
