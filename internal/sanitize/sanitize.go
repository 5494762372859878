// Package sanitize applies regex-based redaction to result row field values
// before they leave the server, so secrets stored in database files (API
// keys, emails) never reach the calling agent.
package sanitize

import (
	"fmt"
	"regexp"
)

// Rule is the sanitizer's own rule type.
type Rule struct {
	Pattern     string
	Replacement string
}

type compiledRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Sanitizer applies regex-based sanitization to result row field values.
type Sanitizer struct {
	rules []compiledRule
}

// NewSanitizer creates a new Sanitizer. Returns an error on invalid regex patterns.
func NewSanitizer(rules []Rule) (*Sanitizer, error) {
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("sanitize: invalid regex pattern %q: %v", r.Pattern, err)
		}
		compiled[i] = compiledRule{pattern: re, replacement: r.Replacement}
	}
	return &Sanitizer{rules: compiled}, nil
}

// HasRules returns true if the sanitizer has any rules configured.
func (s *Sanitizer) HasRules() bool {
	return len(s.rules) > 0
}

// SanitizeRows applies every rule to each string field value in the result
// rows. SQLite values have a fixed variant set (nil, int64, float64, string,
// base64-encoded blob); only strings are rewritten, everything else passes
// through untouched.
func (s *Sanitizer) SanitizeRows(rows []map[string]interface{}) []map[string]interface{} {
	if len(s.rules) == 0 {
		return rows
	}
	for _, row := range rows {
		for k, v := range row {
			if str, ok := v.(string); ok {
				for _, rule := range s.rules {
					str = rule.pattern.ReplaceAllString(str, rule.replacement)
				}
				row[k] = str
			}
		}
	}
	return rows
}
