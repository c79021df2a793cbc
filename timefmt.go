package spanlog

import (
	"strconv"
	"time"
)

// TimeZone selects the offset records are stamped in.
type TimeZone uint8

const (
	TimeZoneUTC TimeZone = iota
	TimeZoneLocal
)

type timeMode uint8

const (
	timeOff timeMode = iota
	timeEpochSeconds
	timeEpochMillis
	timeEpochMicros
	timeEpochNanos
	timeRFC3339
	timeRFC2822
	timePrettyTime
	timePrettyDateTime
	timeCustom
)

// TimePrecision is the fractional-seconds precision of RFC3339 output.
type TimePrecision uint8

const (
	PrecisionSeconds TimePrecision = iota
	PrecisionMillis
	PrecisionMicros
	PrecisionNanos
)

// TimeFormat selects how the timestamp renders.
type TimeFormat struct {
	layout    string
	mode      timeMode
	precision TimePrecision
	useZ      bool
}

var (
	// TimeOff omits the timestamp entirely.
	TimeOff = TimeFormat{mode: timeOff}
	// TimeEpochSeconds renders seconds since the Unix epoch.
	TimeEpochSeconds = TimeFormat{mode: timeEpochSeconds}
	// TimeEpochMillis renders milliseconds since the Unix epoch.
	TimeEpochMillis = TimeFormat{mode: timeEpochMillis}
	// TimeEpochMicros renders microseconds since the Unix epoch.
	TimeEpochMicros = TimeFormat{mode: timeEpochMicros}
	// TimeEpochNanos renders nanoseconds since the Unix epoch.
	TimeEpochNanos = TimeFormat{mode: timeEpochNanos}
	// TimeRFC2822 renders e.g. "Sat, 31 Dec 2022 00:15:08 +0000".
	TimeRFC2822 = TimeFormat{mode: timeRFC2822}
	// TimePrettyTime renders HH:MM:SS.
	TimePrettyTime = TimeFormat{mode: timePrettyTime}
	// TimePrettyDateTime renders YYYY-MM-DD HH:MM:SS.
	TimePrettyDateTime = TimeFormat{mode: timePrettyDateTime}
)

// TimeRFC3339 renders RFC3339 with the given fractional precision. When
// useZ is set, a zero offset renders as "Z" instead of "+00:00".
func TimeRFC3339(precision TimePrecision, useZ bool) TimeFormat {
	return TimeFormat{mode: timeRFC3339, precision: precision, useZ: useZ}
}

// TimeCustom renders with a Go reference layout, e.g. "2006-01-02 15:04:05".
func TimeCustom(layout string) TimeFormat {
	return TimeFormat{mode: timeCustom, layout: layout}
}

const rfc2822Layout = "Mon, 02 Jan 2006 15:04:05 -0700"

var rfc3339Fractions = map[TimePrecision]string{
	PrecisionSeconds: "",
	PrecisionMillis:  ".000",
	PrecisionMicros:  ".000000",
	PrecisionNanos:   ".000000000",
}

// formatTime renders now per the format. The caller has already applied
// the configured timezone to now.
func formatTime(now time.Time, f TimeFormat) string {
	switch f.mode {
	case timeEpochSeconds:
		return strconv.FormatInt(now.Unix(), 10)
	case timeEpochMillis:
		return strconv.FormatInt(now.UnixMilli(), 10)
	case timeEpochMicros:
		return strconv.FormatInt(now.UnixMicro(), 10)
	case timeEpochNanos:
		return strconv.FormatInt(now.UnixNano(), 10)
	case timeRFC3339:
		layout := "2006-01-02T15:04:05" + rfc3339Fractions[f.precision]
		if f.useZ {
			layout += "Z07:00"
		} else {
			layout += "-07:00"
		}
		return now.Format(layout)
	case timeRFC2822:
		return now.Format(rfc2822Layout)
	case timePrettyTime:
		return now.Format("15:04:05")
	case timePrettyDateTime:
		return now.Format("2006-01-02 15:04:05")
	case timeCustom:
		return now.Format(f.layout)
	default:
		return strconv.FormatInt(now.Unix(), 10)
	}
}
