package spanlog

import (
	"fmt"
	"strings"
)

// Level is an event severity. The numeric values are the wire numbers
// emitted under LevelNumber.
type Level uint8

const (
	LevelTrace Level = 10
	LevelDebug Level = 20
	LevelInfo  Level = 30
	LevelWarn  Level = 40
	LevelError Level = 50
)

// String returns the canonical uppercase name.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return fmt.Sprintf("LEVEL(%d)", uint8(l))
	}
}

// ParseLevel maps a level name to its Level, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", s)
	}
}

// LevelFormat selects how the level renders in a record.
type LevelFormat uint8

const (
	// LevelOff omits the level entirely.
	LevelOff LevelFormat = iota
	// LevelUppercase renders "INFO".
	LevelUppercase
	// LevelLowercase renders "info".
	LevelLowercase
	// LevelNumber renders 30.
	LevelNumber
)
