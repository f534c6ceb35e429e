package preprocessor

import "regexp"

// markerRegex matches the dependency marker convention: a qualified name
// bracketed by the fixed @@ token pair. The inner character class is kept
// bit-exact with the hand-written SQL sources this tool consumes.
var markerRegex = regexp.MustCompile(`@@([A-Za-z0-9_.]+)@@`)

// EraseMarkers rewrites @@namespace.object@@ references to plain
// namespace.object so the definition becomes executable SQL. Text outside
// the marker convention is passed through untouched.
func EraseMarkers(sql string) string {
	return markerRegex.ReplaceAllString(sql, "$1")
}
