package aggregator

import "strings"

// submissionTokens are the submitted values that keep a record out of the
// report. Both answers count as decided; only other values are pending.
var submissionTokens = map[string]bool{
	"y":     true,
	"yes":   true,
	"true":  true,
	"n":     true,
	"no":    true,
	"false": true,
}

// IsPending reports whether a submitted value leaves the record to be
// reported. Matching is case-insensitive; empty is pending.
func IsPending(submitted string) bool {
	return !submissionTokens[strings.ToLower(strings.TrimSpace(submitted))]
}
