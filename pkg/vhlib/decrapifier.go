package vhlib

import (
	"strconv"
	"strings"
)

// decrapifier cleans a bare filename (path and extension already stripped)
// against a configured keyword blacklist (§4.8). It is optional: the Parser
// skips it entirely when no keywords have been configured.
type decrapifier struct {
	plain    []string // matched case-insensitively as a whole word
	patterns []string // contain NUM/SE/EP tokens
}

func newDecrapifier(keywords []string) *decrapifier {
	d := &decrapifier{}
	for _, k := range keywords {
		if strings.Contains(k, "NUM") || strings.Contains(k, "SE") || strings.Contains(k, "EP") {
			d.patterns = append(d.patterns, k)
		} else {
			d.plain = append(d.plain, k)
		}
	}
	return d
}

// decrapifyResult is the cleaned title plus any season/episode extracted by
// pattern keywords.
type decrapifyResult struct {
	Title   string
	Season  int
	HasSE   bool
	Episode int
	HasEP   bool
}

// Clean runs the full algorithm: ASCII-non-alphanumeric blanking, then
// repeated passes of the keyword blacklist until no further match is found,
// then whitespace collapse/trim.
func (d *decrapifier) Clean(name string) decrapifyResult {
	buf := []byte(name)
	for i, b := range buf {
		if !isAlphaNumASCII(b) {
			buf[i] = ' '
		}
	}
	s := string(buf)

	res := decrapifyResult{}
	for {
		changed := false
		for _, kw := range d.plain {
			if ns, ok := blankWholeWord(s, kw); ok {
				s = ns
				changed = true
			}
		}
		for _, pat := range d.patterns {
			if ns, num, se, ep, ok := applyPattern(s, pat); ok {
				s = ns
				changed = true
				if se >= 0 {
					res.Season = se
					res.HasSE = true
				}
				if ep >= 0 {
					res.Episode = ep
					res.HasEP = true
				}
				_ = num
			}
		}
		if !changed {
			break
		}
	}

	res.Title = collapseAndTrim(s)
	return res
}

func isAlphaNumASCII(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// blankWholeWord replaces the first case-insensitive whole-word occurrence of
// kw in s with spaces, returning ok=false if kw does not occur as a whole
// word (bounded by non-graph characters, i.e. whitespace here since the
// input has already had punctuation blanked).
func blankWholeWord(s, kw string) (string, bool) {
	lower := strings.ToLower(s)
	kwLower := strings.ToLower(kw)
	n := len(kwLower)
	for i := 0; i+n <= len(lower); i++ {
		if lower[i:i+n] != kwLower {
			continue
		}
		if i > 0 && lower[i-1] != ' ' {
			continue
		}
		if i+n < len(lower) && lower[i+n] != ' ' {
			continue
		}
		return s[:i] + strings.Repeat(" ", n) + s[i+n:], true
	}
	return s, false
}

// applyPattern converts a NUM/SE/EP pattern keyword into a scanf-style match
// against s, returning the cleaned string with the match blanked and any
// season/episode values found (-1 if that token is absent from pat).
func applyPattern(s, pat string) (cleaned string, num, season, episode int, ok bool) {
	season, episode = -1, -1
	tokens, literals := splitPatternTokens(pat)
	if len(tokens) == 0 {
		return s, -1, -1, -1, false
	}

	lower := strings.ToLower(s)
	litLower := make([]string, len(literals))
	for i, l := range literals {
		litLower[i] = strings.ToLower(l)
	}

	for start := 0; start < len(s); start++ {
		pos := start
		matchedValues := make([]int, len(tokens))
		matched := true
		for ti, tok := range tokens {
			if litLower[ti] != "" {
				if !strings.HasPrefix(lower[pos:], litLower[ti]) {
					matched = false
					break
				}
				pos += len(litLower[ti])
			}
			digitStart := pos
			for pos < len(s) && s[pos] >= '0' && s[pos] <= '9' {
				pos++
			}
			if pos == digitStart {
				matched = false
				break
			}
			v, _ := strconv.Atoi(s[digitStart:pos])
			matchedValues[ti] = v
			_ = tok
		}
		if !matched {
			continue
		}
		// blank the matched span [start, pos)
		out := s[:start] + strings.Repeat(" ", pos-start) + s[pos:]
		for ti, tok := range tokens {
			switch tok {
			case "SE":
				season = matchedValues[ti]
			case "EP":
				episode = matchedValues[ti]
			case "NUM":
				num = matchedValues[ti]
			}
		}
		return out, num, season, episode, true
	}
	return s, -1, -1, -1, false
}

// splitPatternTokens splits a pattern like "SExEP" or "SENUMEP" into the
// ordered list of NUM/SE/EP tokens and the literal text preceding each.
func splitPatternTokens(pat string) (tokens []string, literalBefore []string) {
	rest := pat
	for len(rest) > 0 {
		idx, tok := nextToken(rest)
		if idx < 0 {
			break
		}
		literalBefore = append(literalBefore, rest[:idx])
		tokens = append(tokens, tok)
		rest = rest[idx+len(tok):]
	}
	return tokens, literalBefore
}

func nextToken(s string) (int, string) {
	best, bestTok := -1, ""
	for _, tok := range []string{"NUM", "SE", "EP"} {
		if i := strings.Index(s, tok); i >= 0 && (best < 0 || i < best) {
			best, bestTok = i, tok
		}
	}
	return best, bestTok
}

func collapseAndTrim(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// metaKeyGroup maps a lower-cased parser metadata key to its group, per
// §4.8's static table; unmapped keys fall back to Miscellaneous.
func metaKeyGroup(key string) Group {
	switch key {
	case "album", "title":
		return GroupTitles
	case "artist", "author", "albumartist", "composer":
		return GroupEntities
	case "date", "year":
		return GroupTemporal
	case "genre":
		return GroupClassification
	case "track":
		return GroupOrganisational
	default:
		return GroupMiscellaneous
	}
}
