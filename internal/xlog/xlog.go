// Package xlog routes optional debug output of the entropy coders.
//
// Library code never logs unless the caller hands in a Logger. Every helper
// accepts a nil Logger and then returns before any formatting is done, so
// disabled logging costs a nil check. *log.Logger satisfies Logger.
package xlog

import (
	"fmt"
	"strings"

	"github.com/kr/pretty"
)

// Logger is the output sink. The log.Logger type supports this interface.
type Logger interface {
	Output(calldepth int, s string) error
}

// Printf formats according to format and writes to l. Nothing happens when
// l is nil.
func Printf(l Logger, format string, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintf(format, v...))
	}
}

// Println writes its operands to l, separated by spaces.
func Println(l Logger, v ...interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintln(v...))
	}
}

// Diff writes the field-level differences between before and after, one
// line each, prefixed by label. Values are rendered by kr/pretty, so
// nested tables show the path to every changed entry.
func Diff(l Logger, label string, before, after interface{}) int {
	if l == nil {
		return 0
	}
	diffs := pretty.Diff(before, after)
	if len(diffs) == 0 {
		l.Output(2, label+": unchanged")
		return 0
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d changes", label, len(diffs))
	for _, d := range diffs {
		sb.WriteString("\n\t")
		sb.WriteString(d)
	}
	l.Output(2, sb.String())
	return len(diffs)
}

// Dump writes a pretty-printed rendering of v.
func Dump(l Logger, label string, v interface{}) {
	if l != nil {
		l.Output(2, fmt.Sprintf("%s: %# v", label, pretty.Formatter(v)))
	}
}
