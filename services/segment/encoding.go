package segment

// Digits maps 0-9 to segment patterns (bit 7 = a ... bit 1 = g).
var Digits = [10]uint8{0xFC, 0x60, 0xDA, 0xF2, 0x66, 0xB6, 0xBE, 0xE4, 0xFE, 0xF6}

// Dot is the decimal point bit.
const Dot uint8 = 0x01

// Blank is a digit with no segment lit.
const Blank uint8 = 0x00

// Parse converts text made of digits, spaces and dots into a frame. A dot
// lights the decimal point of the cell before it, so it may not come first or
// follow another dot. Short input is padded with blanks on the right.
func Parse(s string) ([NumDigits]uint8, bool) {
	var out [NumDigits]uint8
	n := 0
	dotted := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '.':
			if n == 0 || dotted {
				return [NumDigits]uint8{}, false
			}
			out[n-1] |= Dot
			dotted = true
			continue
		case c == ' ':
			if n == NumDigits {
				return [NumDigits]uint8{}, false
			}
			out[n] = Blank
		case c >= '0' && c <= '9':
			if n == NumDigits {
				return [NumDigits]uint8{}, false
			}
			out[n] = Digits[c-'0']
		default:
			return [NumDigits]uint8{}, false
		}
		n++
		dotted = false
	}
	return out, true
}

// Number renders the low four decimal digits of n. With blankLeading, zeros
// ahead of the first significant digit are left dark; the last digit is
// always shown.
func Number(n uint, blankLeading bool) [NumDigits]uint8 {
	var out [NumDigits]uint8
	for i := NumDigits - 1; i >= 0; i-- {
		out[i] = Digits[n%10]
		n /= 10
	}
	if blankLeading {
		for i := 0; i < NumDigits-1 && out[i] == Digits[0]; i++ {
			out[i] = Blank
		}
	}
	return out
}
