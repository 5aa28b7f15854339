package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Plan translates an Expr tree into a SQL WHERE fragment and its
// positional bindings, in left-to-right order.
func Plan(expr *Expr) (where string, bindings []interface{}, err error) {
	if expr == nil {
		return "1=1", nil, nil
	}
	return planNode(expr)
}

func planNode(e *Expr) (string, []interface{}, error) {
	switch e.Kind {
	case ExprTerm:
		frag, binding := termFragment(e.Term)
		if binding == nil {
			return frag, nil, nil
		}
		return frag, []interface{}{binding}, nil

	case ExprKeyValue:
		return keyValueFragment(e.Key, e.Value)

	case ExprNot:
		inner, bindings, err := planNode(e.Child)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("NOT (%s)", inner), bindings, nil

	case ExprAnd:
		return planCombinator(e.Children, "AND")

	case ExprOr:
		return planCombinator(e.Children, "OR")

	default:
		return "1=1", nil, nil
	}
}

func planCombinator(children []*Expr, op string) (string, []interface{}, error) {
	parts := make([]string, 0, len(children))
	var bindings []interface{}
	for _, c := range children {
		frag, b, err := planNode(c)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, fmt.Sprintf("(%s)", frag))
		bindings = append(bindings, b...)
	}
	return strings.Join(parts, " "+op+" "), bindings, nil
}

// termFragment implements the term shape table: exact-quoted, wildcard,
// and plain substring match.
func termFragment(t string) (frag string, binding interface{}) {
	if t == "" {
		return "1=1", nil
	}
	if strings.HasPrefix(t, `"`) && strings.HasSuffix(t, `"`) && len(t) >= 2 {
		exact := t[1 : len(t)-1]
		return "name = ? COLLATE NOCASE", exact
	}
	if strings.ContainsAny(t, "*?") {
		return "name LIKE ?", wildcardToLike(t)
	}
	return "name LIKE ?", "%" + t + "%"
}

func wildcardToLike(pattern string) string {
	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// keyValueFragment implements the key-value predicate table, dispatching
// on the already-canonicalized key.
func keyValueFragment(key, value string) (string, []interface{}, error) {
	switch key {
	case "name":
		frag, binding := termFragment(value)
		return frag, bindingSlice(binding), nil
	case "path":
		frag, binding := termFragment(value)
		frag = strings.Replace(frag, "name", "full_path", 1)
		return frag, bindingSlice(binding), nil
	case "ext":
		ext := strings.TrimPrefix(value, ".")
		return "file_extension = ? COLLATE NOCASE", []interface{}{ext}, nil
	case "size":
		return sizeFragment(value)
	case "type":
		return typeFragment(value)
	case "modified":
		return dateFragment("date_modified", value)
	case "created":
		return dateFragment("date_added", value)
	default:
		frag, binding := termFragment(value)
		return frag, bindingSlice(binding), nil
	}
}

func bindingSlice(binding interface{}) []interface{} {
	if binding == nil {
		return nil
	}
	return []interface{}{binding}
}

var sizePattern = regexp.MustCompile(`^([><]?)(\d+(?:\.\d+)?)(B|KB|MB|GB|TB)?$`)

var sizeUnits = map[string]int64{
	"B":  1,
	"KB": 1024,
	"MB": 1024 * 1024,
	"GB": 1024 * 1024 * 1024,
	"TB": 1024 * 1024 * 1024 * 1024,
}

// sizeFragment implements the size key-value grammar: an optional
// comparison operator, a numeric magnitude, and an optional unit
// (default bytes, no operator defaults to equality). A malformed value
// falls back to a substring search on the raw value.
func sizeFragment(value string) (string, []interface{}, error) {
	m := sizePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(value)))
	if m == nil {
		return "size LIKE ?", []interface{}{"%" + value + "%"}, nil
	}

	op, magnitude, unit := m[1], m[2], m[3]
	n, err := strconv.ParseFloat(magnitude, 64)
	if err != nil {
		return "size LIKE ?", []interface{}{"%" + value + "%"}, nil
	}
	multiplier := int64(1)
	if unit != "" {
		multiplier = sizeUnits[unit]
	}
	bytes := int64(n * float64(multiplier))

	switch op {
	case ">":
		return "size > ?", []interface{}{bytes}, nil
	case "<":
		return "size < ?", []interface{}{bytes}, nil
	default:
		return "size = ?", []interface{}{bytes}, nil
	}
}

// typeCategories enumerates the extension membership for each type:
// category. These lists are a reasonable, documented choice (see
// DESIGN.md).
var typeCategories = map[string][]string{
	"image":    {"jpg", "jpeg", "png", "gif", "bmp", "tiff", "tif", "webp", "heic", "svg", "ico"},
	"video":    {"mp4", "mov", "avi", "mkv", "webm", "flv", "wmv", "m4v", "mpg", "mpeg"},
	"audio":    {"mp3", "wav", "flac", "aac", "ogg", "m4a", "wma", "aiff"},
	"document": {"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "txt", "rtf", "odt", "pages", "key", "numbers"},
	"code":     {"go", "py", "js", "ts", "java", "c", "cpp", "h", "hpp", "rs", "rb", "swift", "sh", "json", "yaml", "yml", "html", "css"},
	"archive":  {"zip", "tar", "gz", "bz2", "xz", "7z", "rar", "dmg"},
}

func typeFragment(value string) (string, []interface{}, error) {
	lower := strings.ToLower(value)
	if lower == "folder" || lower == "directory" {
		return "is_directory = 1", nil, nil
	}
	if exts, ok := typeCategories[lower]; ok {
		placeholders := make([]string, len(exts))
		bindings := make([]interface{}, len(exts))
		for i, ext := range exts {
			placeholders[i] = "?"
			bindings[i] = ext
		}
		return fmt.Sprintf("file_extension IN (%s)", strings.Join(placeholders, ", ")), bindings, nil
	}
	return "file_extension = ? COLLATE NOCASE", []interface{}{lower}, nil
}

// dateFragment implements the modified/created key-value grammar:
// relative keywords, an absolute YYYY-MM-DD day range, or a signed
// absolute compare. A malformed value yields no results rather than an
// error.
func dateFragment(column, value string) (string, []interface{}, error) {
	now := time.Now()
	trimmed := strings.TrimSpace(strings.ToLower(value))

	if lowerBound, ok := relativeLowerBound(trimmed, now); ok {
		return fmt.Sprintf("%s >= ?", column), []interface{}{float64(lowerBound.Unix())}, nil
	}

	if strings.HasPrefix(trimmed, ">") || strings.HasPrefix(trimmed, "<") {
		op := trimmed[:1]
		day, err := time.Parse("2006-01-02", trimmed[1:])
		if err != nil {
			return "1=0", nil, nil
		}
		cmp := ">"
		if op == "<" {
			cmp = "<"
		}
		return fmt.Sprintf("%s %s ?", column, cmp), []interface{}{float64(day.Unix())}, nil
	}

	if day, err := time.Parse("2006-01-02", trimmed); err == nil {
		start := day
		end := day.AddDate(0, 0, 1)
		return fmt.Sprintf("%s >= ? AND %s < ?", column, column),
			[]interface{}{float64(start.Unix()), float64(end.Unix())}, nil
	}

	return "1=0", nil, nil
}

func relativeLowerBound(keyword string, now time.Time) (time.Time, bool) {
	startOfDay := func(t time.Time) time.Time {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	}
	startOfWeek := func(t time.Time) time.Time {
		d := startOfDay(t)
		offset := int(d.Weekday())
		return d.AddDate(0, 0, -offset)
	}
	startOfMonth := func(t time.Time) time.Time {
		y, m, _ := t.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	}
	startOfYear := func(t time.Time) time.Time {
		y, _, _ := t.Date()
		return time.Date(y, 1, 1, 0, 0, 0, 0, t.Location())
	}

	switch keyword {
	case "today":
		return startOfDay(now), true
	case "yesterday":
		return startOfDay(now).AddDate(0, 0, -1), true
	case "thisweek":
		return startOfWeek(now), true
	case "lastweek":
		return startOfWeek(now).AddDate(0, 0, -7), true
	case "thismonth":
		return startOfMonth(now), true
	case "lastmonth":
		return startOfMonth(startOfMonth(now).AddDate(0, 0, -1)), true
	case "thisyear":
		return startOfYear(now), true
	case "lastyear":
		return startOfYear(now).AddDate(-1, 0, 0), true
	default:
		return time.Time{}, false
	}
}
