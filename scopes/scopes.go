// Package scopes provides the permission scope set used to compare what an
// application requires against what an identity provider has granted.
package scopes

import (
	"sort"
	"strings"
)

// Set is a normalized collection of scope tokens. The zero value is usable.
type Set map[string]struct{}

// New builds a Set from individual scope tokens. Empty and whitespace-only
// tokens are dropped.
func New(tokens ...string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s.Add(t)
	}
	return s
}

// Parse builds a Set from a space-separated scope string, the format used by
// OAuth token responses.
func Parse(raw string) Set {
	return New(strings.Fields(raw)...)
}

// Add inserts a scope token into the set.
func (s Set) Add(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	s[token] = struct{}{}
}

// Has reports whether the set contains the given scope token.
func (s Set) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// HasAny reports whether the intersection of the two sets is non-empty.
// This is the grant-policy check: a permission check passes when at least one
// required scope has been granted.
func (s Set) HasAny(other Set) bool {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for token := range small {
		if large.Has(token) {
			return true
		}
	}
	return false
}

// Union returns a new set containing every token from both sets.
func (s Set) Union(other Set) Set {
	union := make(Set, len(s)+len(other))
	for token := range s {
		union[token] = struct{}{}
	}
	for token := range other {
		union[token] = struct{}{}
	}
	return union
}

// Slice returns the scope tokens in sorted order.
func (s Set) Slice() []string {
	tokens := make([]string, 0, len(s))
	for token := range s {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// String renders the set as a space-separated scope string.
func (s Set) String() string {
	return strings.Join(s.Slice(), " ")
}

// Len returns the number of scope tokens in the set.
func (s Set) Len() int {
	return len(s)
}
