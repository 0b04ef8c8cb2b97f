package naming

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rule selects how dots in the raw path are rewritten (§4.6).
type Rule int

const (
	RuleNone Rule = iota
	RuleReplaceDots
	RuleLigoStd
	RuleLigoVac
)

// CaseRule selects whether/how the result is case-folded.
type CaseRule int

const (
	CasePreserve CaseRule = iota
	CaseUpper
	CaseLower
)

// ArrayIndexRule selects how `[i]` array-index segments render.
type ArrayIndexRule int

const (
	ArrayIndexBrackets ArrayIndexRule = iota
	ArrayIndexUnderscore
)

// Substitution is one exact literal-text replacement in an ordered table,
// applied before any conversion rule (§4.6).
type Substitution struct {
	From string
	To   string
}

// TokenRules expands `$(token)`-style placeholders (prefix/suffix
// configurable) against a lookup table. An unknown token has its
// wrapper consumed, leaving the bare token text in place; a malformed
// placeholder (no matching suffix) simply drops the prefix text.
type TokenRules struct {
	Prefix    string // default "$("
	Suffix    string // default ")"
	Recursive bool
	Table     map[string]string
}

// Expand applies t to s, following the original tool's scan-and-replace
// behavior: restart from the beginning after a substitution only when
// Recursive is set, otherwise continue past the replaced text.
func (t TokenRules) Expand(s string) string {
	prefix, suffix := t.Prefix, t.Suffix
	if prefix == "" {
		prefix = "$("
	}
	if suffix == "" {
		suffix = ")"
	}
	ret := s
	pos2 := 0
	for {
		pos1 := strings.Index(ret[pos2:], prefix)
		if pos1 < 0 {
			break
		}
		pos1 += pos2

		sufIdx := strings.Index(ret[pos1+len(prefix):], suffix)
		if sufIdx < 0 {
			ret = ret[:pos1] + ret[pos1+len(prefix):]
			if t.Recursive {
				pos2 = 0
			} else {
				pos2 = pos1
			}
			continue
		}
		end := pos1 + len(prefix) + sufIdx

		token := strings.TrimSpace(ret[pos1+len(prefix) : end])
		value := token
		if t.Table != nil {
			if v, ok := t.Table[token]; ok {
				value = v
			}
		}
		ret = ret[:pos1] + value + ret[end+len(suffix):]
		if t.Recursive {
			pos2 = 0
		} else {
			pos2 = pos1 + len(value)
		}
	}
	return ret
}

// Options configures a single call to Convert.
type Options struct {
	Rule          Rule
	Case          CaseRule
	ArrayIndex    ArrayIndexRule
	Prefix        string
	Substitutions []Substitution
	Tokens        TokenRules

	// StripNamespace forces leading-namespace elimination even when Rule
	// isn't one of the ligo rules (the `-yd` CLI token, §6); the ligo
	// rules already imply it via Rule below.
	StripNamespace bool
}

var caser = map[CaseRule]cases.Caser{
	CaseUpper: cases.Upper(language.Und),
	CaseLower: cases.Lower(language.Und),
}

// Convert turns a raw dotted PLC path into a fully-qualified record name
// per §4.6: substitution table, then token expansion, then (for the ligo
// rules) leading-namespace elimination, then the selected conversion
// rule, then case folding, then the array-index rule, then the prefix.
func Convert(name string, opts Options) string {
	n := name
	for _, sub := range opts.Substitutions {
		n = strings.ReplaceAll(n, sub.From, sub.To)
	}
	n = opts.Tokens.Expand(n)

	if opts.Rule == RuleLigoStd || opts.Rule == RuleLigoVac || opts.StripNamespace {
		n = stripLeadingNamespace(n)
	}

	switch opts.Rule {
	case RuleReplaceDots:
		n = strings.ReplaceAll(n, ".", "_")
	case RuleLigoStd:
		n = replaceNth(n, '.', ':', 1)
		n = replaceNth(n, '.', '-', 1)
		n = strings.ReplaceAll(n, ".", "_")
	case RuleLigoVac:
		n = replaceNth(n, '_', ':', 1)
		n = replaceNth(n, '_', '-', 1)
		n = strings.ReplaceAll(n, ".", "_")
	case RuleNone:
		// no conversion
	}

	if c, ok := caser[opts.Case]; ok {
		n = c.String(n)
	}

	if opts.ArrayIndex == ArrayIndexUnderscore {
		n = strings.ReplaceAll(n, "[", "_")
		n = strings.ReplaceAll(n, "]", "")
	}

	return opts.Prefix + n
}

// stripLeadingNamespace removes a single leading dot, or else everything
// through (and including) the first remaining dot.
func stripLeadingNamespace(n string) string {
	if strings.HasPrefix(n, ".") {
		return n[1:]
	}
	if idx := strings.IndexByte(n, '.'); idx >= 0 {
		return n[idx+1:]
	}
	return n
}

// replaceNth replaces the nth (1-based) occurrence of old with new,
// leaving all others untouched.
func replaceNth(s string, old, new byte, n int) string {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] == old {
			count++
			if count == n {
				return s[:i] + string(new) + s[i+1:]
			}
		}
	}
	return s
}
