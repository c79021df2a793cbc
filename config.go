package spanlog

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// fileConfig is the TOML shape of the option surface. Every key is
// optional; absent keys keep the JSON defaults.
type fileConfig struct {
	JSON            *bool    `toml:"json"`
	Time            string   `toml:"time"`
	TimeLayout      string   `toml:"time_layout"`
	TimePrecision   string   `toml:"time_precision"`
	TimeZ           *bool    `toml:"time_z"`
	Timezone        string   `toml:"timezone"`
	Level           string   `toml:"level"`
	MinLevel        string   `toml:"min_level"`
	Case            string   `toml:"case"`
	SpanJoin        string   `toml:"span_join"`
	SpanJoinSep     string   `toml:"span_join_sep"`
	FieldJoin       string   `toml:"field_join"`
	FieldJoinSep    string   `toml:"field_join_sep"`
	FieldJoinFields []string `toml:"field_join_fields"`
	Sink            string   `toml:"sink"`
	MessageKey      string   `toml:"message_key"`
	File            *bool    `toml:"file"`
	Module          *bool    `toml:"module"`
	Span            *bool    `toml:"span"`
	Color           *bool    `toml:"color"`
}

// Load builds a configured logger from a TOML file.
func Load(path string) (*Logger, error) {
	var cfg fileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return cfg.logger()
}

// Parse builds a configured logger from TOML data.
func Parse(data []byte) (*Logger, error) {
	var cfg fileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return cfg.logger()
}

func (c fileConfig) logger() (*Logger, error) {
	// Pick the profile before constructing; every Logger owns a registry
	// and ID pool, so a discarded one would leak its refill goroutine.
	var l *Logger
	if c.JSON != nil && !*c.JSON {
		l = Pretty()
	} else {
		l = New()
	}

	if c.Time != "" {
		tf, err := c.timeFormat()
		if err != nil {
			return nil, err
		}
		l.Time(tf)
	}
	if c.TimeLayout != "" {
		l.Time(TimeCustom(c.TimeLayout))
	}

	switch c.Timezone {
	case "":
	case "utc":
		l.Timezone(TimeZoneUTC)
	case "local":
		l.Timezone(TimeZoneLocal)
	default:
		return nil, fmt.Errorf("unknown timezone %q", c.Timezone)
	}

	switch c.Level {
	case "":
	case "off":
		l.Level(LevelOff)
	case "upper":
		l.Level(LevelUppercase)
	case "lower":
		l.Level(LevelLowercase)
	case "number":
		l.Level(LevelNumber)
	default:
		return nil, fmt.Errorf("unknown level format %q", c.Level)
	}

	if c.MinLevel != "" {
		level, err := ParseLevel(c.MinLevel)
		if err != nil {
			return nil, err
		}
		l.MinLevel(level)
	}

	switch c.Case {
	case "", "none":
	case "snake":
		l.Case(CaseSnake)
	case "camel":
		l.Case(CaseCamel)
	case "pascal":
		l.Case(CasePascal)
	default:
		return nil, fmt.Errorf("unknown case %q", c.Case)
	}

	switch c.SpanJoin {
	case "":
	case "none":
		l.SpanJoin(SpanJoinNone())
	case "overwrite":
		l.SpanJoin(SpanJoinOverwrite())
	case "join":
		sep := c.SpanJoinSep
		if sep == "" {
			sep = "::"
		}
		l.SpanJoin(SpanJoinWith(sep))
	default:
		return nil, fmt.Errorf("unknown span_join %q", c.SpanJoin)
	}

	switch c.FieldJoin {
	case "":
	case "overwrite":
		l.FieldJoin(Overwrite())
	case "join_all":
		l.FieldJoin(JoinAll(c.FieldJoinSep))
	case "join_some":
		l.FieldJoin(JoinSome(c.FieldJoinSep, c.FieldJoinFields...))
	default:
		return nil, fmt.Errorf("unknown field_join %q", c.FieldJoin)
	}

	if c.Sink != "" {
		w, err := sinkWriter(c.Sink)
		if err != nil {
			return nil, err
		}
		l.Writer(w)
	}
	if c.MessageKey != "" {
		l.MessageKey(c.MessageKey)
	}
	if c.File != nil {
		l.File(*c.File)
	}
	if c.Module != nil {
		l.Module(*c.Module)
	}
	if c.Span != nil {
		l.Span(*c.Span)
	}
	if c.Color != nil {
		l.Color(*c.Color)
	}
	return l, nil
}

func (c fileConfig) timeFormat() (TimeFormat, error) {
	switch c.Time {
	case "off":
		return TimeOff, nil
	case "epoch_seconds":
		return TimeEpochSeconds, nil
	case "epoch_millis":
		return TimeEpochMillis, nil
	case "epoch_micros":
		return TimeEpochMicros, nil
	case "epoch_nanos":
		return TimeEpochNanos, nil
	case "rfc2822":
		return TimeRFC2822, nil
	case "pretty_time":
		return TimePrettyTime, nil
	case "pretty_datetime":
		return TimePrettyDateTime, nil
	case "rfc3339":
		precision := PrecisionMillis
		switch c.TimePrecision {
		case "":
		case "seconds":
			precision = PrecisionSeconds
		case "millis":
			precision = PrecisionMillis
		case "micros":
			precision = PrecisionMicros
		case "nanos":
			precision = PrecisionNanos
		default:
			return TimeFormat{}, fmt.Errorf("unknown time_precision %q", c.TimePrecision)
		}
		useZ := true
		if c.TimeZ != nil {
			useZ = *c.TimeZ
		}
		return TimeRFC3339(precision, useZ), nil
	default:
		return TimeFormat{}, fmt.Errorf("unknown time format %q", c.Time)
	}
}

func sinkWriter(name string) (io.Writer, error) {
	switch name {
	case "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open sink %s: %w", name, err)
		}
		return f, nil
	}
}
