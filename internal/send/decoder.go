// ABOUTME: Incremental UTF-8 decoding of a chunked byte stream
// ABOUTME: Incomplete trailing runes are held back until the next chunk completes them

package send

import (
	"strings"
	"unicode/utf8"
)

// chunkDecoder converts stream chunks to text without splitting runes that
// straddle a chunk boundary.
type chunkDecoder struct {
	carry []byte
}

// decode returns the text of carry+p up to the last complete rune.
func (d *chunkDecoder) decode(p []byte) string {
	buf := p
	if len(d.carry) > 0 {
		buf = append(d.carry, p...)
	}

	n := completePrefix(buf)
	d.carry = append([]byte(nil), buf[n:]...)
	return strings.ToValidUTF8(string(buf[:n]), string(utf8.RuneError))
}

// flush returns whatever is still held back. Bytes that never completed a
// rune decode as the replacement character.
func (d *chunkDecoder) flush() string {
	if len(d.carry) == 0 {
		return ""
	}
	s := strings.ToValidUTF8(string(d.carry), string(utf8.RuneError))
	d.carry = nil
	return s
}

// completePrefix returns the length of b without a trailing incomplete rune.
func completePrefix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i > len(b)-utf8.UTFMax; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return len(b)
		}
		return i
	}
	return len(b)
}
