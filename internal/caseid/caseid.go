// Package caseid parses Czech court case identifiers (jednací číslo).
package caseid

import (
	"strconv"
	"strings"
	"unicode"
)

// ID is a structured case identifier parsed from a jednací číslo such as
// "12 C 123/2020-15": senate number, matter-type code, sequence number,
// filing year, and an optional appeal number after the dash.
type ID struct {
	Senate   int
	Matter   string
	Sequence int
	Year     int
	Appeal   *int
}

// Parse parses a jednací číslo of the form
// "<senate> <matter> <sequence>/<year>[-<appeal>]".
// Returns nil for anything that does not match the grammar exactly:
// wrong token count, non-alphabetic matter code, or numeric fields that
// do not parse as base-10 integers.
func Parse(s string) *ID {
	parts := strings.Split(s, " ")
	if len(parts) != 3 {
		return nil
	}

	senate, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil
	}

	matter := parts[1]
	if matter == "" || !isAlpha(matter) {
		return nil
	}

	third := parts[2]
	var appeal *int
	if strings.Contains(third, "-") {
		dashParts := strings.Split(third, "-")
		if len(dashParts) != 2 {
			return nil
		}
		third = dashParts[0]
		n, err := strconv.Atoi(dashParts[1])
		if err != nil {
			return nil
		}
		appeal = &n
	}

	slashParts := strings.Split(third, "/")
	if len(slashParts) != 2 {
		return nil
	}
	sequence, err := strconv.Atoi(slashParts[0])
	if err != nil {
		return nil
	}
	year, err := strconv.Atoi(slashParts[1])
	if err != nil {
		return nil
	}

	return &ID{
		Senate:   senate,
		Matter:   matter,
		Sequence: sequence,
		Year:     year,
		Appeal:   appeal,
	}
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
