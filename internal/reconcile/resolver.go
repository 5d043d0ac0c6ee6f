package reconcile

import (
	"database/sql"
	"strings"

	"sitebooks/internal/models"
)

// LineRef is the coding reference carried by a transaction or a distribution
// line: the raw cost-code/account string, an optional type tag, and the
// line's own attachment flag (NULL when the line says nothing either way).
type LineRef struct {
	Code           string
	TypeTag        string
	AttachmentFlag sql.NullBool
}

// Rule records which precedence step decided an attachment-requirement
// lookup. The order of these constants is the resolution order.
type Rule int

const (
	RuleExplicitNotRequired Rule = iota // template or line explicitly waives the attachment
	RuleTypeTagMatch                    // template whose type tag equals the line's
	RuleFirstMatch                      // first template sharing the normalized code
	RuleLineFlag                        // no template matched, line's own flag
	RuleDefault                         // nothing matched, fail safe toward required
)

// NormalizeCode lowercases a cost-code string and strips everything that is
// not a digit or a dot, so "01-200 " and "01.200" land on the same key.
func NormalizeCode(code string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(code) {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TemplateIndex is a lookup table over a company's cost-code/chart-account
// templates, keyed by normalized code. Templates sharing a code keep their
// original order so the first-match tie-break stays deterministic.
type TemplateIndex struct {
	byCode map[string][]models.CostCodeTemplate
	byID   map[int]models.CostCodeTemplate
}

func NewTemplateIndex(templates []models.CostCodeTemplate) *TemplateIndex {
	idx := &TemplateIndex{
		byCode: make(map[string][]models.CostCodeTemplate),
		byID:   make(map[int]models.CostCodeTemplate, len(templates)),
	}
	for _, t := range templates {
		key := NormalizeCode(t.Code)
		idx.byCode[key] = append(idx.byCode[key], t)
		idx.byID[t.ID] = t
	}
	return idx
}

// ByID returns the template for a cost-code/account identifier. The second
// return is false when the reference points at a deleted template.
func (idx *TemplateIndex) ByID(id int) (models.CostCodeTemplate, bool) {
	t, ok := idx.byID[id]
	return t, ok
}

// AttachmentRequired resolves whether a coded line must carry a supporting
// document. Precedence: any explicit not-required (template or line) wins,
// then the type-tag-matched template, then the first template in original
// order, then the line's own flag, then required.
func (idx *TemplateIndex) AttachmentRequired(line LineRef) bool {
	required, _ := idx.resolve(line)
	return required
}

func (idx *TemplateIndex) resolve(line LineRef) (bool, Rule) {
	matches := idx.byCode[NormalizeCode(line.Code)]

	for _, m := range matches {
		if m.AttachmentRequired.Valid && !m.AttachmentRequired.Bool {
			return false, RuleExplicitNotRequired
		}
	}
	if line.AttachmentFlag.Valid && !line.AttachmentFlag.Bool {
		return false, RuleExplicitNotRequired
	}

	if line.TypeTag != "" {
		for _, m := range matches {
			if m.TypeTag.Valid && m.TypeTag.String == line.TypeTag {
				return templateDefault(m), RuleTypeTagMatch
			}
		}
	}
	if len(matches) > 0 {
		return templateDefault(matches[0]), RuleFirstMatch
	}

	if line.AttachmentFlag.Valid {
		return line.AttachmentFlag.Bool, RuleLineFlag
	}
	return true, RuleDefault
}

// templateDefault reads a template's tri-state flag; unspecified defaults to
// required.
func templateDefault(t models.CostCodeTemplate) bool {
	if t.AttachmentRequired.Valid {
		return t.AttachmentRequired.Bool
	}
	return true
}
