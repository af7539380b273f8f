// Package responder selects Felix's canned reply to a user message via an
// ordered keyword rule table. No inference, no scoring: first match wins.
package responder

import "strings"

// Response is the outcome of selecting a reply.
type Response struct {
	Reply           string
	RevealExercises bool
}

// Selector evaluates an ordered rule table over free text. The zero value is
// not usable; construct with New or NewWithRules.
type Selector struct {
	rules        []Rule
	defaultReply string
}

// New returns a Selector over Felix's built-in rule table.
func New() *Selector {
	return NewWithRules(defaultRules, defaultReply)
}

// NewWithRules returns a Selector over a custom table. The slice order is the
// evaluation order.
func NewWithRules(rules []Rule, fallback string) *Selector {
	return &Selector{rules: rules, defaultReply: fallback}
}

// Select returns the reply for text. It is total: any input, including the
// empty string, yields a reply. Matching is case-insensitive substring
// containment, first rule wins, evaluation stops at the first hit.
func (s *Selector) Select(text string) Response {
	lower := strings.ToLower(text)

	for _, rule := range s.rules {
		for _, trigger := range rule.Triggers {
			if strings.Contains(lower, trigger) {
				return Response{
					Reply:           rule.Reply,
					RevealExercises: rule.RevealExercises,
				}
			}
		}
	}

	return Response{Reply: s.defaultReply}
}
