package normalize

import "strconv"

// prefixRange is a closed interval of GS1 country-prefix values. Rather than
// deriving restricted bands from arithmetic inline at the call site, the
// bands are enumerated here as data — spec.md §9 notes this area has
// shifted between source variants, so the table is the single place to
// reconcile against a future GS1 revision.
type prefixRange struct {
	lo, hi int
}

// restrictedPrefixes are the bands valid EAN codes must NOT fall into, per
// spec.md §4.4 and the Open Question in §9 (this design accepts 50..199,
// unlike some historical GS1 tables that additionally restrict 60..99).
var restrictedPrefixes = []prefixRange{
	{20, 29},
	{40, 49},
	{200, 299},
}

func validCountryPrefix(prefix int) bool {
	if prefix < 0 || prefix > 958 {
		return false
	}
	for _, r := range restrictedPrefixes {
		if prefix >= r.lo && prefix <= r.hi {
			return false
		}
	}
	return true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func digitAt(s string, i int) int {
	return int(s[i] - '0')
}

// validEAN8 checks length, digit-only composition, country prefix, and the
// GS1 check-digit formula: (sum of odd-index digits) + 3*(sum of
// even-index digits) ≡ 0 (mod 10), indices 0-based.
func validEAN8(code string) bool {
	if len(code) != 8 || !allDigits(code) {
		return false
	}
	prefix, err := strconv.Atoi(code[:3])
	if err != nil || !validCountryPrefix(prefix) {
		return false
	}
	sum := 0
	for i := 0; i < 8; i++ {
		d := digitAt(code, i)
		if i%2 == 0 {
			sum += 3 * d
		} else {
			sum += d
		}
	}
	return sum%10 == 0
}

// validEAN13 checks length, digit-only composition, a minimum numeric value
// of 100_000_000 (smaller values collide with the EAN-8 space or are
// reserved), country prefix, and the GS1 check-digit formula:
// sum_{i=0..5}(d[2i] + 3*d[2i+1]) + d[12] ≡ 0 (mod 10).
func validEAN13(code string) bool {
	if len(code) != 13 || !allDigits(code) {
		return false
	}
	n, err := strconv.ParseInt(code, 10, 64)
	if err != nil || n < 100_000_000 {
		return false
	}
	prefix, err := strconv.Atoi(code[:3])
	if err != nil || !validCountryPrefix(prefix) {
		return false
	}
	sum := 0
	for i := 0; i < 6; i++ {
		sum += digitAt(code, 2*i) + 3*digitAt(code, 2*i+1)
	}
	sum += digitAt(code, 12)
	return sum%10 == 0
}
