// Package salt 实现 SALT 编码的线格式部分：字母表、单字符数值编码与头部规则。
package salt

// Alphabet 为 SALT 的单字符数位表（0x20..0x7D，共 94 个）。
// 下标即线格式，不得调整顺序；下标 0（空格）为哨兵。
// '~' 不在表内：它是头部结束符。
const Alphabet = " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}"

// Size 为字母表长度。
const Size = len(Alphabet)

// Sentinel 为溢出/低补给占位字符，与 Alphabet[0] 相同。
const Sentinel byte = ' '

// Index 返回字符 c 在字母表中的下标；不在表内时返回 -1。
func Index(c byte) int {
	if c < Alphabet[0] || c > Alphabet[Size-1] {
		return -1
	}
	return int(c - Alphabet[0])
}
