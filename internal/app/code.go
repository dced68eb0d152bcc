package app

import "strings"

// codeAlphabet omits characters that are easy to misread when a code is
// shouted across a room or typed from a screen: no I, O, 0, or 1.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

// newJoinCode draws a fresh code from the injected randomness. Uniqueness is
// the store's problem; callers retry on ErrCodeConflict.
func newJoinCode(intn func(int) int) string {
	var b strings.Builder
	b.Grow(codeLength)
	for i := 0; i < codeLength; i++ {
		b.WriteByte(codeAlphabet[intn(len(codeAlphabet))])
	}
	return b.String()
}

// normalizeCode maps human-entered codes onto their canonical stored form.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
