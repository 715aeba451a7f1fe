package core

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// fuzzyMinRatio is the similarity above which a word is considered a typo of the query.
const fuzzyMinRatio = .8

// Matches reports whether query is found in any of fields.
// Matching is case-insensitive: a substring match wins, otherwise each word of the
// fields is compared with the query and close spellings ("enginering") are accepted.
// An empty query matches everything.
func Matches(query string, fields ...string) bool {
	query = CleanString(query, true /* lower */)
	if query == "" {
		return true
	}
	for _, fld := range fields {
		if strings.Contains(strings.ToLower(fld), query) {
			return true
		}
	}
	if len(query) < 4 { // too short for typos to mean anything
		return false
	}
	q := strings.Split(query, "")
	for _, fld := range fields {
		for _, word := range strings.Fields(strings.ToLower(fld)) {
			if difflib.NewMatcher(q, strings.Split(word, "")).Ratio() >= fuzzyMinRatio {
				return true
			}
		}
	}
	return false
}

// SameCategory reports whether a record category matches the requested one.
// An empty or "all" category matches everything.
func SameCategory(want, got string) bool {
	want = CleanString(want, true /* lower */)
	return want == "" || want == "all" || want == CleanString(got, true /* lower */)
}
