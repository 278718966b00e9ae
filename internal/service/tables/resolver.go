package tables

import (
	"strings"

	"github.com/dsyryh/feedsync/internal/domain/models"
)

// Resolve maps semantic roles onto column indices by scanning the header
// labels in column order; for each role the first label containing any of its
// alias substrings wins. Roles without a matching label are absent from the
// result — callers decide which roles are required for their source.
func Resolve(labels []string, aliases models.ColumnAliases) map[models.Role]int {
	resolved := make(map[models.Role]int, len(aliases))

	for role := range aliases {
		for i, label := range labels {
			if aliases.Matches(role, strings.ToLower(label)) {
				resolved[role] = i
				break
			}
		}
	}

	return resolved
}
