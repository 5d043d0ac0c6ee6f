package reconcile

import (
	"database/sql"
	"testing"

	"sitebooks/internal/models"
)

func nullBool(b bool) sql.NullBool {
	return sql.NullBool{Bool: b, Valid: true}
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01-200", "01200"},
		{" 01.200 ", "01.200"},
		{"GL 4510", "4510"},
		{"abc", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := NormalizeCode(tc.in); got != tc.want {
			t.Errorf("NormalizeCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAttachmentRequiredExplicitNotRequiredWins(t *testing.T) {
	// Even with a type-tag match that would default to required, an explicit
	// not-required on any template sharing the code wins.
	idx := NewTemplateIndex([]models.CostCodeTemplate{
		{ID: 1, Code: "01-200", TypeTag: nullStr("labor"), AttachmentRequired: nullBool(true)},
		{ID: 2, Code: "01.200", AttachmentRequired: nullBool(false)},
	})

	if idx.AttachmentRequired(LineRef{Code: "01200", TypeTag: "labor"}) {
		t.Fatal("explicit not-required template should win over the type-tag match")
	}
}

func TestAttachmentRequiredLineFlagNotRequired(t *testing.T) {
	idx := NewTemplateIndex([]models.CostCodeTemplate{
		{ID: 1, Code: "01-200", AttachmentRequired: nullBool(true)},
	})

	line := LineRef{Code: "01-200", AttachmentFlag: nullBool(false)}
	if idx.AttachmentRequired(line) {
		t.Fatal("line-level not-required flag should waive the requirement")
	}
}

func TestAttachmentRequiredTypeTagTieBreak(t *testing.T) {
	idx := NewTemplateIndex([]models.CostCodeTemplate{
		{ID: 1, Code: "4510", TypeTag: nullStr("labor"), AttachmentRequired: nullBool(true)},
		{ID: 2, Code: "4510", TypeTag: nullStr("material"), AttachmentRequired: nullBool(true)},
	})

	required, rule := idx.resolve(LineRef{Code: "4510", TypeTag: "material"})
	if !required {
		t.Fatal("expected required")
	}
	if rule != RuleTypeTagMatch {
		t.Fatalf("expected type-tag tie-break, got rule %d", rule)
	}
}

func TestAttachmentRequiredFirstMatchFallback(t *testing.T) {
	idx := NewTemplateIndex([]models.CostCodeTemplate{
		{ID: 1, Code: "4510", TypeTag: nullStr("labor")},
		{ID: 2, Code: "4510", TypeTag: nullStr("material")},
	})

	// No type tag on the line: first template in original order decides, and
	// its unspecified tri-state defaults to required.
	required, rule := idx.resolve(LineRef{Code: "4510"})
	if !required {
		t.Fatal("unspecified template flag should default to required")
	}
	if rule != RuleFirstMatch {
		t.Fatalf("expected first-match rule, got %d", rule)
	}
}

func TestAttachmentRequiredNoMatch(t *testing.T) {
	idx := NewTemplateIndex(nil)

	tests := []struct {
		name string
		line LineRef
		want bool
		rule Rule
	}{
		{"line flag required", LineRef{Code: "9999", AttachmentFlag: nullBool(true)}, true, RuleLineFlag},
		{"no flag defaults required", LineRef{Code: "9999"}, true, RuleDefault},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			required, rule := idx.resolve(tc.line)
			if required != tc.want || rule != tc.rule {
				t.Fatalf("resolve() = (%v, %d), want (%v, %d)", required, rule, tc.want, tc.rule)
			}
		})
	}
}
