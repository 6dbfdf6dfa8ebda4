// Package validation checks player credentials before anything touches the
// store.
package validation

import (
	"regexp"
	"strings"

	"github.com/samber/oops"
)

// Rules holds the patterns an id or password must satisfy. Every pattern in a
// list must match.
type Rules struct {
	IDPatterns       []string `mapstructure:"id_patterns"`
	PasswordPatterns []string `mapstructure:"password_patterns"`
}

// DefaultRules returns the stock credential rules:
// - id: starts with a letter, then letters, digits or underscores, 4-20 chars
// - password: 6-32 printable ASCII chars with at least one letter and one digit
func DefaultRules() Rules {
	return Rules{
		IDPatterns: []string{`^[A-Za-z][A-Za-z0-9_]{3,19}$`},
		PasswordPatterns: []string{
			`^[\x21-\x7E]{6,32}$`,
			`[A-Za-z]`,
			`[0-9]`,
		},
	}
}

// Validator is safe for concurrent use
type Validator struct {
	id       []*regexp.Regexp
	password []*regexp.Regexp
}

// NewValidator compiles the rules
func NewValidator(rules Rules) (*Validator, error) {
	id, err := compile("id", rules.IDPatterns)
	if err != nil {
		return nil, err
	}
	password, err := compile("password", rules.PasswordPatterns)
	if err != nil {
		return nil, err
	}
	return &Validator{id: id, password: password}, nil
}

// MustNewValidator is NewValidator for rules known to be valid
func MustNewValidator(rules Rules) *Validator {
	v, err := NewValidator(rules)
	if err != nil {
		panic(err)
	}
	return v
}

func compile(field string, patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, oops.Code("VALIDATION_RULES_INVALID").
			With("field", field).
			Errorf("at least one %s pattern is required", field)
	}
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, oops.Code("VALIDATION_RULES_INVALID").
				With("field", field).
				With("pattern", p).
				Wrap(err)
		}
		out = append(out, re)
	}
	return out, nil
}

// ValidateID reports whether id satisfies every id pattern
func (v *Validator) ValidateID(id string) bool {
	return matchAll(v.id, id)
}

// ValidatePassword reports whether pw satisfies every password pattern
func (v *Validator) ValidatePassword(pw string) bool {
	return matchAll(v.password, pw)
}

// IsPresent reports whether every value is non-blank
func (v *Validator) IsPresent(values ...string) bool {
	for _, s := range values {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

func matchAll(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if !re.MatchString(s) {
			return false
		}
	}
	return true
}
