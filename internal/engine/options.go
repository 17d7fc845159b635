package engine

import (
	"strconv"
	"strings"
)

// splitOption splits a "KEY=VALUE" voice-file option string.
func splitOption(opt string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(opt, "=")
	return key, value, ok
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
