package tables

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNoMatch indicates no extracted file matched the requested role.
var ErrNoMatch = errors.New("no file matches role")

// ErrAmbiguous indicates more than one extracted file matched the role; the
// caller must not guess.
var ErrAmbiguous = errors.New("multiple files match role")

// ErrHeaderNotFound indicates the header row could not be located within the
// probe window.
var ErrHeaderNotFound = errors.New("header row not found")

// DefaultHeaderProbe bounds how deep FindHeaderRow looks for the header row.
const DefaultHeaderProbe = 15

// Locate selects the single file whose lower-cased base name contains token
// and carries the .xlsx extension. Zero candidates yield ErrNoMatch, two or
// more yield ErrAmbiguous with the candidates listed.
func Locate(files []string, token string) (string, error) {
	token = strings.ToLower(token)

	var matches []string
	for _, f := range files {
		base := strings.ToLower(filepath.Base(f))
		if strings.Contains(base, token) && strings.HasSuffix(base, ".xlsx") {
			matches = append(matches, f)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: token %q", ErrNoMatch, token)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: token %q matched %s", ErrAmbiguous, token, strings.Join(matches, ", "))
	}
}

// FindHeaderRow probes rows 0..maxProbe-1 and returns the index of the first
// row containing a cell whose lower-cased text contains requiredLabel. The
// probe is bounded because vendor exports put a variable-length preamble
// above the header but never a deep one.
func FindHeaderRow(rows [][]string, requiredLabel string, maxProbe int) (int, error) {
	if maxProbe <= 0 {
		maxProbe = DefaultHeaderProbe
	}
	requiredLabel = strings.ToLower(requiredLabel)

	limit := maxProbe
	if len(rows) < limit {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		for _, cell := range rows[i] {
			if strings.Contains(strings.ToLower(cell), requiredLabel) {
				return i, nil
			}
		}
	}

	return 0, fmt.Errorf("%w: label %q within first %d rows", ErrHeaderNotFound, requiredLabel, maxProbe)
}
