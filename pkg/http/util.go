package http

import (
	"time"

	xutil "Manifold/pkg/util"
)

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int { return xutil.ParseIntDefault(s, def) }

// ParseTime accepts RFC3339, dates and unix seconds or millis.
func ParseTime(s string) (time.Time, bool) { return xutil.ParseTime(s) }

// SplitList splits a comma separated query value.
func SplitList(s string) []string { return xutil.SplitList(s) }
