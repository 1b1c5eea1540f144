package services

import (
	"sort"
	"strings"

	"capbot-api/config"
	"capbot-api/models"
)

// Field names used in FieldMatch output.
const (
	FieldTitle       = "title"
	FieldCategory    = "category"
	FieldDescription = "description"
)

// minContainmentLen guards substring matching: shorter tokens only match a
// tag exactly, so "go" does not light up "django".
const minContainmentLen = 4

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "into": true,
	"is": true, "it": true, "of": true, "on": true, "or": true, "that": true,
	"the": true, "this": true, "to": true, "use": true, "using": true,
	"with": true, "will": true, "we": true, "which": true, "based": true,
	"system": true, "project": true, "develop": true, "development": true,
}

// SkillMatcher scores token overlap between a topic's text fields and a
// reviewer's declared skill tags.
type SkillMatcher struct {
	cfg config.MatchingConfig
}

func NewSkillMatcher(cfg config.MatchingConfig) *SkillMatcher {
	return &SkillMatcher{cfg: cfg}
}

// Tokenize case-folds, strips punctuation and drops stopwords. Duplicate
// tokens are collapsed to their first occurrence so order stays stable.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if len(tok) < 2 || stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		tokens = append(tokens, tok)
	}
	return tokens
}

// Match scores every text field of the signature against the reviewer's
// skills. Identical inputs always produce identical scores and identical
// matched-token ordering.
func (m *SkillMatcher) Match(sig TopicSignature, skills []models.ReviewerSkill) SkillMatchResult {
	description := strings.TrimSpace(sig.Description + " " + sig.Objectives)

	fields := []struct {
		name   string
		text   string
		weight float64
	}{
		{FieldTitle, sig.Title, m.cfg.TitleWeight},
		{FieldCategory, sig.Category, m.cfg.CategoryWeight},
		{FieldDescription, description, m.cfg.DescriptionWeight},
	}

	result := SkillMatchResult{
		Fields:        make([]FieldMatch, 0, len(fields)),
		MatchedSkills: []string{},
	}
	matchedSkills := make(map[string]bool)

	var overall float64
	for _, f := range fields {
		fm := m.matchField(f.name, f.text, skills)
		for _, tm := range fm.MatchedTokens {
			if !matchedSkills[tm.SkillTag] {
				matchedSkills[tm.SkillTag] = true
			}
		}
		overall += f.weight * fm.Score
		result.Fields = append(result.Fields, fm)
	}

	if overall > m.cfg.ScaleMax {
		overall = m.cfg.ScaleMax
	}
	result.Overall = overall

	// Matched skills reported in the reviewer's declared tag order.
	for _, s := range skills {
		tag := normalizeTag(s.SkillTag)
		if matchedSkills[tag] {
			result.MatchedSkills = append(result.MatchedSkills, s.SkillTag)
		}
	}

	return result
}

func (m *SkillMatcher) matchField(name, text string, skills []models.ReviewerSkill) FieldMatch {
	fm := FieldMatch{Field: name}

	tokens := Tokenize(text)
	if len(tokens) == 0 || len(skills) == 0 {
		return fm
	}

	var total float64
	for _, tok := range tokens {
		best, ok := bestSkillFor(tok, skills)
		if !ok {
			continue
		}
		total += best.Contribution
		fm.MatchedTokens = append(fm.MatchedTokens, best)
	}

	score := m.cfg.ScaleMax * total / float64(len(tokens))
	if score > m.cfg.ScaleMax {
		score = m.cfg.ScaleMax
	}
	fm.Score = score

	// Rank by contribution; equal contributions keep field order.
	sort.SliceStable(fm.MatchedTokens, func(i, j int) bool {
		return fm.MatchedTokens[i].Contribution > fm.MatchedTokens[j].Contribution
	})

	return fm
}

// bestSkillFor finds the highest-contribution skill for a token. Ties are
// broken by the reviewer's declared tag order, which keeps output stable.
func bestSkillFor(token string, skills []models.ReviewerSkill) (TokenMatch, bool) {
	best := TokenMatch{Token: token}
	found := false

	for _, s := range skills {
		tag := normalizeTag(s.SkillTag)
		if tag == "" {
			continue
		}

		prof := float64(s.ProficiencyLevel)
		if prof <= 0 || prof > 5 {
			prof = 5
		}

		var contribution float64
		switch {
		case tokenEqualsTag(token, tag):
			contribution = prof / 5
		case containsEitherWay(token, tag):
			contribution = 0.5 * prof / 5
		default:
			continue
		}

		if !found || contribution > best.Contribution {
			best.SkillTag = tag
			best.Contribution = contribution
			found = true
		}
	}

	return best, found
}

// tokenEqualsTag treats a multi-word tag ("machine learning") as matched
// when the token equals any of its words.
func tokenEqualsTag(token, tag string) bool {
	if token == tag {
		return true
	}
	for _, part := range strings.Fields(tag) {
		if token == part {
			return true
		}
	}
	return false
}

// containsEitherWay tolerates minor inflection ("testing" vs "test") by
// substring containment, in both directions, with the length guard applied
// to the contained side.
func containsEitherWay(token, tag string) bool {
	if len(token) >= minContainmentLen && strings.Contains(tag, token) {
		return true
	}
	if len(tag) >= minContainmentLen && strings.Contains(token, tag) {
		return true
	}
	return false
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
