// Package modelcatalog implements the bijective wire-id <-> variant-name
// encoding of spec.md §4.4, and the per-provider model enumeration that
// encoding feeds. It is grounded on the original Rust implementation's two
// (byte-identical) encoders — ai-pipeline/lib/src/rigging/build/enum_name.rs
// and ai-pipeline/lib/src/rigging/providers/models/build/enum_name.rs — of
// which this package keeps exactly one, per spec.md §9's open question.
package modelcatalog

import (
	"strings"
	"unicode"
)

// EncodeVariantName applies the encoding rule of spec.md §4.4 to a provider
// wire id and returns the corresponding enum-style variant identifier.
//
// Steps (spec.md §4.4):
//  1. Trim. Empty -> "Bespoke".
//  2. Split on the first '/' into provider/model segments if present.
//  3. Encode each segment: alphanumeric runs -> PascalCase tokens
//     (all-digit tokens pass through verbatim); '-' -> "__", '.' -> "_",
//     any other separator -> "__".
//  4. Collapse interior runs of four-or-more underscores within each
//     segment to exactly two, before the segments are joined.
//  5. Join segments with "___" if a provider segment existed.
//  6. Prefix "M" if the result starts with a digit.
//
// Collapsing happens per segment, before the "___" namespace delimiter is
// introduced by the join in step 5 — the delimiter is never subjected to
// the collapse pass, so it needs no separate protection.
func EncodeVariantName(wireID string) string {
	wireID = strings.TrimSpace(wireID)
	if wireID == "" {
		return "Bespoke"
	}

	if idx := strings.Index(wireID, "/"); idx >= 0 {
		provider := encodeSegment(wireID[:idx])
		model := encodeSegment(wireID[idx+1:])
		return digitPrefix(provider + "___" + model)
	}
	return digitPrefix(encodeSegment(wireID))
}

// digitPrefix implements step 6: it prefixes "M" when s starts with a digit.
func digitPrefix(s string) string {
	if len(s) > 0 && s[0] >= '0' && s[0] <= '9' {
		return "M" + s
	}
	return s
}

// encodeSegment implements steps 3-4 for a single provider or model segment.
func encodeSegment(input string) string {
	var out strings.Builder
	var tok strings.Builder

	flush := func() {
		if tok.Len() == 0 {
			return
		}
		out.WriteString(pascalToken(tok.String()))
		tok.Reset()
	}

	for _, r := range input {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if r < unicode.MaxASCII {
				tok.WriteRune(r)
				continue
			}
		}
		flush()
		switch r {
		case '-':
			out.WriteString("__")
		case '.':
			out.WriteString("_")
		default:
			out.WriteString("__")
		}
	}
	flush()

	return collapseRuns(out.String())
}

// pascalToken converts a single alphanumeric run into a PascalCase token.
// All-digit tokens are preserved verbatim.
func pascalToken(token string) string {
	allDigits := true
	for _, r := range token {
		if r < '0' || r > '9' {
			allDigits = false
			break
		}
	}
	if allDigits {
		return token
	}

	var b strings.Builder
	for i, r := range token {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// collapseRuns collapses every maximal run of four-or-more underscores in s
// down to exactly two, leaving shorter runs (including a bare run of three)
// untouched. Called on a single segment's own output, before any
// namespace delimiter exists, so there is nothing to protect: a real "___"
// delimiter is introduced only afterward, by concatenation in
// EncodeVariantName, and is never re-scanned by this function.
func collapseRuns(s string) string {
	var b strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '_' {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == '_' {
			j++
		}
		if run := j - i; run >= 4 {
			b.WriteString("__")
		} else {
			b.WriteString(s[i:j])
		}
		i = j
	}
	return b.String()
}

// DecodeVariantName is the inverse of EncodeVariantName for wire ids that
// were actually encoded by it. Per spec.md §4.4, lowercase restoration is
// lossy for mixed-case original ids (a token like "GPT" becomes "Gpt" on
// encode and decodes back to "gpt"), so the catalog must retain the
// original wire id as a data attribute — this function is a best-effort
// inverse for round-trip tests and for wire ids with no internal casing
// ambiguity, never the source of truth for a live catalog entry.
func DecodeVariantName(variant string) string {
	if variant == "Bespoke" {
		return ""
	}

	parts := strings.SplitN(variant, "___", 2)
	if len(parts) == 2 {
		return decodeSegment(parts[0]) + "/" + decodeSegment(parts[1])
	}
	return decodeSegment(variant)
}

func decodeSegment(segment string) string {
	// The digit-prefix "M" inserted by encodeSegment cannot be losslessly
	// distinguished from a segment that legitimately starts with the letter
	// M (e.g. "Mistral"); this best-effort decoder does not attempt to
	// strip it; callers needing the exact original must use the catalog's
	// retained wire-id attribute instead (spec.md §4.4).
	var b strings.Builder
	i := 0
	runes := []rune(segment)
	for i < len(runes) {
		if runes[i] == '_' {
			if i+1 < len(runes) && runes[i+1] == '_' {
				b.WriteRune('-')
				i += 2
				continue
			}
			b.WriteRune('.')
			i++
			continue
		}
		b.WriteRune(unicode.ToLower(runes[i]))
		i++
	}
	return b.String()
}
