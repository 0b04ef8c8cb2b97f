package naming

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertLigoStdAtomicLeafRoundTrip(t *testing.T) {
	got := Convert(".MAIN.x", Options{Rule: RuleLigoStd, Case: CasePreserve})
	require.Equal(t, "MAIN:x", got)
}

func TestConvertLigoStdIsIdempotent(t *testing.T) {
	opts := Options{Rule: RuleLigoStd, Case: CaseUpper}
	once := Convert(".MAIN.s.a", opts)
	twice := Convert(once, opts)
	require.Equal(t, once, twice)
}

func TestConvertNoneIsLeftInverseOfItself(t *testing.T) {
	opts := Options{Rule: RuleNone}
	in := "MAIN.s.a"
	require.Equal(t, in, Convert(Convert(in, opts), opts))
}

func TestConvertLigoStdSecondAndLaterDots(t *testing.T) {
	got := Convert(".MAIN.s.a.b", Options{Rule: RuleLigoStd})
	require.Equal(t, "MAIN:s-a_b", got)
}

func TestConvertLigoVacUsesUnderscoreSeparators(t *testing.T) {
	got := Convert(".MAIN_s_a", Options{Rule: RuleLigoVac})
	require.Equal(t, "MAIN:s-a", got)
}

func TestConvertReplaceDotsWithUnderscore(t *testing.T) {
	got := Convert("MAIN.s.a", Options{Rule: RuleReplaceDots})
	require.Equal(t, "MAIN_s_a", got)
}

func TestConvertArrayIndexUnderscoreRule(t *testing.T) {
	got := Convert("MAIN:s:b[0]", Options{Rule: RuleNone, ArrayIndex: ArrayIndexUnderscore})
	require.Equal(t, "MAIN:s:b_0", got)
}

func TestConvertCaseRules(t *testing.T) {
	require.Equal(t, "main:x", Convert(".MAIN.x", Options{Rule: RuleLigoStd, Case: CaseLower}))
	require.Equal(t, "MAIN:X", Convert(".MAIN.x", Options{Rule: RuleLigoStd, Case: CaseUpper}))
}

func TestConvertPrefixAppliedAfterConversion(t *testing.T) {
	got := Convert(".MAIN.x", Options{Rule: RuleLigoStd, Prefix: "TC:"})
	require.Equal(t, "TC:MAIN:x", got)
}

func TestConvertSubstitutionTableAppliedBeforeConversion(t *testing.T) {
	got := Convert(".OLD.x", Options{
		Rule:          RuleLigoStd,
		Substitutions: []Substitution{{From: "OLD", To: "NEW"}},
	})
	require.Equal(t, "NEW:x", got)
}

func TestTokenExpandSubstitutesKnownToken(t *testing.T) {
	tr := TokenRules{Table: map[string]string{"alias": "PUMP1"}}
	require.Equal(t, "PUMP1.x", tr.Expand("$(alias).x"))
}

func TestTokenExpandUnknownTokenStripsWrapperOnly(t *testing.T) {
	tr := TokenRules{Table: map[string]string{}}
	require.Equal(t, "widget.x", tr.Expand("$(widget).x"))
}

func TestTokenExpandMalformedPlaceholderDropsPrefixOnly(t *testing.T) {
	tr := TokenRules{Table: map[string]string{}}
	require.Equal(t, "foobar", tr.Expand("foo$(bar"))
}

func TestTokenExpandNonRecursiveDoesNotRescanReplacement(t *testing.T) {
	tr := TokenRules{Table: map[string]string{"a": "$(b)"}, Recursive: false}
	require.Equal(t, "$(b).x", tr.Expand("$(a).x"))
}

func TestTokenExpandRecursiveRescansReplacement(t *testing.T) {
	tr := TokenRules{Table: map[string]string{"a": "$(b)", "b": "PUMP1"}, Recursive: true}
	require.Equal(t, "PUMP1.x", tr.Expand("$(a).x"))
}

func TestConvertStructureFlatteningArrayIndexPolicy(t *testing.T) {
	got := Convert("MAIN:s:b[0]", Options{Rule: RuleNone, ArrayIndex: ArrayIndexUnderscore, Case: CasePreserve})
	require.Equal(t, "MAIN:s:b_0", got)
}
