package money

import (
	"fmt"
	"strings"
)

// Amount is a currency value in minor units (centavos).
type Amount int64

// FromMajor converts whole pesos to an Amount.
func FromMajor(v int64) Amount {
	return Amount(v * 100)
}

// ParseAmount reads a currency value as the generation service emits it:
// Colombian formatting ("4.500.000,00", "$ 296.529.217,7"), plain integers
// ("4500000"), or dotted decimals ("4500000.50"). The last separator wins as
// the decimal mark when it is followed by one or two digits; everything else
// is treated as grouping.
func ParseAmount(s string) (Amount, error) {
	raw := s
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	// Sign may precede or follow the currency symbol ("-$296.529.217,7").
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "$")
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("parse amount %q: empty", raw)
	}

	intPart, fracPart := splitDecimal(s)

	var major int64
	for _, r := range intPart {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("parse amount %q: unexpected character %q", raw, r)
		}
		major = major*10 + int64(r-'0')
	}

	var minor int64
	switch len(fracPart) {
	case 0:
	case 1:
		if fracPart[0] < '0' || fracPart[0] > '9' {
			return 0, fmt.Errorf("parse amount %q: bad decimals", raw)
		}
		minor = int64(fracPart[0]-'0') * 10
	case 2:
		for _, r := range fracPart {
			if r < '0' || r > '9' {
				return 0, fmt.Errorf("parse amount %q: bad decimals", raw)
			}
			minor = minor*10 + int64(r-'0')
		}
	default:
		return 0, fmt.Errorf("parse amount %q: too many decimals", raw)
	}

	v := major*100 + minor
	if neg {
		v = -v
	}
	return Amount(v), nil
}

// splitDecimal separates the integer digits from the decimal digits and drops
// grouping separators.
func splitDecimal(s string) (intPart, fracPart string) {
	lastSep := -1
	for i, r := range s {
		if r == '.' || r == ',' {
			lastSep = i
		}
	}
	if lastSep >= 0 {
		tail := s[lastSep+1:]
		if len(tail) >= 1 && len(tail) <= 2 {
			intPart = s[:lastSep]
			fracPart = tail
		} else {
			intPart = s
		}
	} else {
		intPart = s
	}
	intPart = strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}, intPart)
	return intPart, fracPart
}

// Format renders the amount the way the MGA platform displays money:
// dots for thousands, comma before two decimals.
func (a Amount) Format() string {
	neg := a < 0
	if neg {
		a = -a
	}
	major := int64(a) / 100
	minor := int64(a) % 100

	digits := fmt.Sprintf("%d", major)
	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(d)
	}
	fmt.Fprintf(&sb, ",%02d", minor)
	return sb.String()
}

func (a Amount) String() string {
	return a.Format()
}
