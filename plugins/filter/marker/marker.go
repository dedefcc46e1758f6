// Package marker 按子串标记过滤在 SALT 中没有对应项的动作。
package marker

import (
	"strings"

	"saltenc/pkg/contract"
)

// DefaultMarkers: 规划器中没有 SALT 对应项的动作片段。
var DefaultMarkers = []string{
	"MULE",
	"3x Mine gas",
	"Lift",
	"to free",
}

// Options: Markers 为 nil 时使用 DefaultMarkers；显式空切片表示不过滤。
// Extra 追加到最终列表之后。
type Options struct {
	Markers []string `json:"markers"`
	Extra   []string `json:"extra"`
}

// Filter 实现 contract.Filter。
type Filter struct {
	markers []string
}

// New 创建过滤器；空串标记被忽略（否则会过滤一切）。
func New(opts *Options) *Filter {
	src := DefaultMarkers
	var extra []string
	if opts != nil {
		if opts.Markers != nil {
			src = opts.Markers
		}
		extra = opts.Extra
	}
	f := &Filter{markers: make([]string, 0, len(src)+len(extra))}
	for _, m := range append(append([]string(nil), src...), extra...) {
		if m != "" {
			f.markers = append(f.markers, m)
		}
	}
	return f
}

// Representable 动作文本包含任一标记即不可表示。
func (f *Filter) Representable(action string) bool {
	for _, m := range f.markers {
		if strings.Contains(action, m) {
			return false
		}
	}
	return true
}

// Markers 返回生效的标记列表副本。
func (f *Filter) Markers() []string { return append([]string(nil), f.markers...) }

var _ contract.Filter = (*Filter)(nil)
