package banks

import (
	"regexp"
	"strings"
)

// Rule is one declarative payee-extraction rule: a case-insensitive pattern
// over the free-text remittance field and an extractor that turns the match
// into a payee candidate.
type Rule struct {
	// Name identifies the rule in diagnostics and tests.
	Name string

	// Pattern is matched against the remittance text. Compile it with (?i):
	// remittance casing is institution noise, never signal.
	Pattern *regexp.Regexp

	// Extract builds the payee from the pattern's submatches. The result is
	// trimmed of surrounding whitespace by the rule set.
	Extract func(match []string) string
}

// RuleSet is an ordered list of extraction rules, evaluated top to bottom.
// The first rule whose pattern matches wins; later rules and the generic
// fallback are not consulted.
type RuleSet []Rule

// Extraction reports which rule matched and the payee it produced, so the
// caller can log the decision without the rule engine doing any logging
// itself.
type Extraction struct {
	Rule      string
	PayeeName string
}

// Match evaluates the rules in order against the remittance text. ok is
// false when no rule matches, which is the signal to defer to the generic
// normalizer.
func (rs RuleSet) Match(remittance string) (Extraction, bool) {
	if remittance == "" {
		return Extraction{}, false
	}

	for _, rule := range rs {
		match := rule.Pattern.FindStringSubmatch(remittance)
		if match == nil {
			continue
		}

		return Extraction{
			Rule:      rule.Name,
			PayeeName: strings.TrimSpace(rule.Extract(match)),
		}, true
	}

	return Extraction{}, false
}
