// Package burny 解析 sc2-planner 导出的 "MM:SS SUPPLY ACTION" 文本行。
package burny

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"unicode/utf8"

	"saltenc/pkg/contract"
)

// Options: 预留占位，当前行格式固定。
type Options struct{}

// Parser 实现 contract.Parser。
type Parser struct{}

// New 创建解析器。
func New(_ *Options) *Parser { return &Parser{} }

var lineRe = regexp.MustCompile(`^(\d{2}):(\d{2}) (\d+) (.+)$`)

const maxSeconds = 59

// Parse 解析单行；不匹配或取值越界时返回 *contract.LineError。
func (p *Parser) Parse(line int, text string) (contract.BuildEvent, error) {
	if !utf8.ValidString(text) {
		return contract.BuildEvent{}, contract.Malformed(line, text, errors.New("invalid UTF-8"))
	}
	m := lineRe.FindStringSubmatch(text)
	if m == nil {
		return contract.BuildEvent{}, contract.Malformed(line, text, nil)
	}
	// 分/秒为两位数字，Atoi 不会失败
	mins, _ := strconv.Atoi(m[1])
	secs, _ := strconv.Atoi(m[2])
	if secs > maxSeconds {
		return contract.BuildEvent{}, contract.Malformed(line, text, fmt.Errorf("seconds %d out of range", secs))
	}
	// 超出 int 的补给值截为上限，编码时落到哨兵
	supply, err := strconv.Atoi(m[3])
	if errors.Is(err, strconv.ErrRange) {
		supply = math.MaxInt
	} else if err != nil {
		return contract.BuildEvent{}, contract.Malformed(line, text, err)
	}
	return contract.BuildEvent{Line: line, Minutes: mins, Seconds: secs, Supply: supply, Action: m[4]}, nil
}

var _ contract.Parser = (*Parser)(nil)
