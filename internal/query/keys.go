package query

import "strings"

// canonicalKeys maps every recognized alias (case-insensitive) to its
// canonical key name.
var canonicalKeys = map[string]string{
	"size":     "size",
	"filesize": "size",

	"type":     "type",
	"filetype": "type",

	"ext":       "ext",
	"extension": "ext",

	"modified":     "modified",
	"mod":          "modified",
	"datemodified": "modified",

	"created":   "created",
	"dateadded": "created",

	"name":     "name",
	"filename": "name",

	"path":     "path",
	"fullpath": "path",
}

// normalizeKey returns the canonical key name and whether key is
// recognized at all.
func normalizeKey(key string) (string, bool) {
	canon, ok := canonicalKeys[strings.ToLower(key)]
	return canon, ok
}
