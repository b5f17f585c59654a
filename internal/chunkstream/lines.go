package chunkstream

import "strings"

// SplitLines splits a captured transcript into lines.
// Both "\n" and "\r\n" terminate a line. Line content is otherwise untouched,
// and a buffer ending in a terminator yields a trailing empty line.
func SplitLines(buf string) []string {
	lines := strings.Split(buf, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
