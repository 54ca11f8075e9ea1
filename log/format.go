package log

import (
	"iter"
	"strconv"
	"strings"
)

// Format selects how records are encoded.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is used when no format, or an unrecognized one, is given.
const DefaultFormat = FormatText

var formatNames = [...]string{
	FormatText: "text",
	FormatJSON: "json",
}

func (f Format) String() string {
	if f >= 0 && int(f) < len(formatNames) {
		return formatNames[f]
	}

	return "Format(" + strconv.Itoa(int(f)) + ")"
}

// Formats yields the name of every format.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, name := range formatNames {
			if !yield(name) {
				return
			}
		}
	}
}

// ParseFormat returns the format named by s, ignoring case and surrounding
// space. Unknown names yield [DefaultFormat].
func ParseFormat(s string) Format {
	s = strings.TrimSpace(s)

	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return Format(f)
		}
	}

	return DefaultFormat
}
