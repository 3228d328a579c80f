package tidy

import "strings"

// SplitPath splits a dot-path into its raw segments. A dot splits the path
// unless the character right before it is a backslash. Segments are
// returned still escaped; pass each through [UnescapeKey] before using it
// as a key.
//
//	SplitPath(`a.b.c`)        // ["a", "b", "c"]
//	SplitPath(`date\.upload`) // ["date\.upload"]
func SplitPath(path string) []string {
	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] != '.' {
			continue
		}
		if i > 0 && path[i-1] == '\\' {
			continue
		}
		segments = append(segments, path[start:i])
		start = i + 1
	}
	return append(segments, path[start:])
}

// UnescapeKey turns an escaped path segment back into a literal key:
// `\.` becomes `.` and `\\` becomes `\`. Any other backslash is kept as is,
// including a dangling one at the end of the segment.
func UnescapeKey(segment string) string {
	if !strings.Contains(segment, `\`) {
		return segment
	}

	var b strings.Builder
	b.Grow(len(segment))
	for i := 0; i < len(segment); i++ {
		c := segment[i]
		if c == '\\' && i+1 < len(segment) && (segment[i+1] == '.' || segment[i+1] == '\\') {
			b.WriteByte(segment[i+1])
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// EscapeKey escapes a literal key so that it can be used as a single
// dot-path segment
func EscapeKey(key string) string {
	key = strings.ReplaceAll(key, `\`, `\\`)
	return strings.ReplaceAll(key, ".", `\.`)
}

// JoinPath escapes each key and joins them into a dot-path
func JoinPath(keys ...string) string {
	escaped := make([]string, len(keys))
	for i, k := range keys {
		escaped[i] = EscapeKey(k)
	}
	return strings.Join(escaped, ".")
}
