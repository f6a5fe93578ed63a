// Package regexcache caches compiled regular expressions for the lifetime of
// the process. Numbering-plan patterns are compiled on first use and reused
// on every subsequent parse, validation, and formatting call.
package regexcache

import (
	"regexp"
	"sync"
)

var cache sync.Map // pattern string -> *regexp.Regexp

// MustCompile returns the compiled form of pattern, caching it process-wide.
// It panics on an invalid pattern: plan patterns are validated offline, so a
// bad pattern is a packaging defect, not a runtime condition.
func MustCompile(pattern string) *regexp.Regexp {
	if re, ok := cache.Load(pattern); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(pattern)
	actual, _ := cache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp)
}

// MustCompileFull compiles pattern anchored to match an entire string.
func MustCompileFull(pattern string) *regexp.Regexp {
	return MustCompile("^(?:" + pattern + ")$")
}
