package repository

import "strings"

// LikeEscape is the ESCAPE character used with LikePattern.
const LikeEscape = `\`

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern turns a user search term into a lower-cased substring pattern
// for `LOWER(col) LIKE ? ESCAPE '\'` (casefold(col) on SQLite). Wildcards
// in term match literally.
func LikePattern(term string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}
