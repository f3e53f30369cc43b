package sourcemap

import "github.com/pkg/errors"

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// digitValues maps an ASCII byte to its base64 value, or -1.
var digitValues [128]int8

func init() {
	for i := range digitValues {
		digitValues[i] = -1
	}
	for i := 0; i < len(base64Digits); i++ {
		digitValues[base64Digits[i]] = int8(i)
	}
}

const (
	vlqShift    = 5
	vlqMask     = 1<<vlqShift - 1
	vlqContinue = 1 << vlqShift
)

// appendVLQ appends the base64 VLQ encoding of v: the sign in the lowest
// bit, then 5-bit groups from least significant, each but the last with
// the continuation bit set.
func appendVLQ(buf []byte, v int) []byte {
	var u uint64
	if v < 0 {
		u = uint64(-v)<<1 | 1
	} else {
		u = uint64(v) << 1
	}
	for {
		digit := u & vlqMask
		u >>= vlqShift
		if u != 0 {
			digit |= vlqContinue
		}
		buf = append(buf, base64Digits[digit])
		if u == 0 {
			return buf
		}
	}
}

// readVLQ decodes one value from the start of s and returns it with the
// number of bytes consumed.
func readVLQ(s string) (int, int, error) {
	var u uint64
	var shift uint
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 128 || digitValues[c] < 0 {
			return 0, 0, errors.Errorf("invalid base64 digit %q", c)
		}
		if shift > 60 {
			return 0, 0, errors.New("VLQ value overflows")
		}
		digit := uint64(digitValues[c])
		u |= (digit & vlqMask) << shift
		shift += vlqShift
		if digit&vlqContinue == 0 {
			v := int(u >> 1)
			if u&1 != 0 {
				v = -v
			}
			return v, i + 1, nil
		}
	}
	return 0, 0, errors.New("truncated VLQ value")
}
