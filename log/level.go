package log

import (
	"iter"
	"log/slog"
	"strings"
)

// Level is the severity of a log record.
type Level slog.Level

const (
	LevelTrace = Level(slog.LevelDebug - 4)
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// DefaultLevel is used when no level, or an unrecognized one, is given.
const DefaultLevel = LevelInfo

// levelNames lists the named levels in ascending severity.
var levelNames = [...]struct {
	level Level
	name  string
}{
	{LevelTrace, "trace"},
	{LevelDebug, "debug"},
	{LevelInfo, "info"},
	{LevelWarn, "warn"},
	{LevelError, "error"},
}

// Levels yields the name of every named level, least severe first.
func Levels() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, n := range levelNames {
			if !yield(n.name) {
				return
			}
		}
	}
}

// ParseLevel returns the level named by s, ignoring case. Offsets such as
// "warn+2" are accepted for the slog levels. Anything else yields
// [DefaultLevel].
func ParseLevel(s string) Level {
	s = strings.TrimSpace(s)

	for _, n := range levelNames {
		if strings.EqualFold(s, n.name) {
			return n.level
		}
	}

	var sl slog.Level
	if err := sl.UnmarshalText([]byte(s)); err != nil {
		return DefaultLevel
	}

	return Level(sl)
}

func (l Level) String() string {
	for _, n := range levelNames {
		if n.level == l {
			return n.name
		}
	}

	return slog.Level(l).String()
}

// label is the upper-case name written into records.
func (l Level) label() string { return strings.ToUpper(l.String()) }
