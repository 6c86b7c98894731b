// Package grapheme implements a small, embedded approximation of the
// Unicode UAX #29 extended grapheme cluster boundary rules: enough to
// keep combining marks, regional-indicator flag pairs, and ZWJ emoji
// sequences attached to their base character, plus CRLF as one
// cluster. It is not a full UAX #29 implementation (no full
// Grapheme_Cluster_Break property table, no indic-conjunct or
// extended-pictographic classes beyond the common emoji ranges) —
// see this module's DESIGN.md for why no such table is pulled from a
// third-party library here.
package grapheme

import "unicode/utf8"

type class uint8

const (
	classOther class = iota
	classCR
	classLF
	classControl
	classExtend
	classSpacingMark
	classRegionalIndicator
	classZWJ
)

func classOf(r rune) class {
	switch {
	case r == '\r':
		return classCR
	case r == '\n':
		return classLF
	case r == 0x200D:
		return classZWJ
	case r >= 0x1F1E6 && r <= 0x1F1FF:
		return classRegionalIndicator
	case isExtend(r):
		return classExtend
	case isSpacingMark(r):
		return classSpacingMark
	case r < 0x20 || r == 0x7F:
		return classControl
	default:
		return classOther
	}
}

// isExtend covers the combining-mark blocks common in Latin, Greek,
// Cyrillic, and Hebrew text plus variation selectors and emoji
// modifiers/skin tones.
func isExtend(r rune) bool {
	switch {
	case r >= 0x0300 && r <= 0x036F: // combining diacritical marks
		return true
	case r >= 0x0483 && r <= 0x0489: // Cyrillic combining marks
		return true
	case r >= 0x0591 && r <= 0x05BD: // Hebrew points
		return true
	case r >= 0x0610 && r <= 0x061A: // Arabic marks
		return true
	case r >= 0x064B && r <= 0x065F:
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF: // emoji skin tone modifiers
		return true
	case r == 0x20E3: // combining enclosing keycap
		return true
	default:
		return false
	}
}

// isSpacingMark covers a handful of common Indic spacing combining
// marks (Devanagari vowel signs). Not exhaustive.
func isSpacingMark(r rune) bool {
	switch {
	case r >= 0x0903 && r <= 0x0903:
		return true
	case r >= 0x093B && r <= 0x093C:
		return true
	case r >= 0x093E && r <= 0x0940:
		return true
	case r >= 0x0949 && r <= 0x094C:
		return true
	default:
		return false
	}
}

// breaks reports whether a grapheme cluster boundary exists between
// prev and cur, the previous and current decoded runes, given the
// count of consecutive regional indicators immediately preceding cur
// (needed for the odd/even flag-pairing rule).
func breaks(prev, cur rune, precedingRI int) bool {
	prevClass := classOf(prev)
	curClass := classOf(cur)

	switch {
	case prevClass == classCR && curClass == classLF:
		return false
	case prevClass == classControl || prevClass == classCR || prevClass == classLF:
		return true
	case curClass == classControl || curClass == classCR || curClass == classLF:
		return true
	case curClass == classExtend || curClass == classSpacingMark:
		return false
	case curClass == classZWJ:
		return false
	case prevClass == classZWJ:
		return false
	case prevClass == classRegionalIndicator && curClass == classRegionalIndicator:
		// precedingRI counts the RI run ending at prev. An odd count
		// means prev started a new pair with cur; an even count means
		// prev already completed a pair, so cur starts another one.
		return precedingRI%2 == 0
	default:
		return true
	}
}

// NextBreak returns the byte length of the first grapheme cluster in
// b. b must be non-empty and begin at a valid UTF-8 rune boundary.
func NextBreak(b []byte) int {
	r0, size0 := utf8.DecodeRune(b)
	offset := size0
	prev := r0
	ri := 0

	if classOf(r0) == classRegionalIndicator {
		ri = 1
	}

	for offset < len(b) {
		r, size := utf8.DecodeRune(b[offset:])
		if breaks(prev, r, ri) {
			break
		}

		if classOf(r) == classRegionalIndicator {
			ri++
		} else {
			ri = 0
		}

		prev = r
		offset += size
	}

	return offset
}

// PrevBreak returns the byte length of the last grapheme cluster in b
// (the cluster ending at the end of b). b must be non-empty.
func PrevBreak(b []byte) int {
	// Walk cluster boundaries forward from the start and remember the
	// offset of the final one; simplest correct approach given clusters
	// are short and b is typically a small lookback window.
	total := 0

	for total < len(b) {
		n := NextBreak(b[total:])
		if n == 0 {
			break
		}

		if total+n == len(b) {
			return n
		}

		total += n
	}

	return len(b)
}
