package spanlog

import (
	"fmt"
	"math"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// fieldKind tags the variant held by a FieldValue.
type fieldKind uint8

const (
	kindInt64 fieldKind = iota
	kindUint64
	kindFloat64
	kindBool
	kindString
	kindDebug
)

// FieldValue is a tagged union over the value shapes a field can carry.
// Values are immutable once produced.
type FieldValue struct {
	str  string
	num  uint64
	kind fieldKind
}

// Field is a named value attached to a span or an event.
type Field struct {
	Key   string
	Value FieldValue
}

// String builds a string-valued field. String fields are the only kind a
// join policy will concatenate on collision.
func String(key, value string) Field {
	return Field{Key: key, Value: FieldValue{kind: kindString, str: value}}
}

// Int builds a signed integer field.
func Int(key string, value int) Field {
	return Int64(key, int64(value))
}

// Int64 builds a signed integer field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: FieldValue{kind: kindInt64, num: uint64(value)}}
}

// Uint64 builds an unsigned integer field.
func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: FieldValue{kind: kindUint64, num: value}}
}

// Float64 builds a floating point field.
func Float64(key string, value float64) Field {
	return Field{Key: key, Value: FieldValue{kind: kindFloat64, num: math.Float64bits(value)}}
}

// Bool builds a boolean field.
func Bool(key string, value bool) Field {
	var n uint64
	if value {
		n = 1
	}
	return Field{Key: key, Value: FieldValue{kind: kindBool, num: n}}
}

// Stringify builds a field from an arbitrary value using its formatted
// representation. Unsupported value shapes always have this fallback.
func Stringify(key string, value any) Field {
	return Field{Key: key, Value: FieldValue{kind: kindDebug, str: fmt.Sprintf("%v", value)}}
}

func stringValue(s string) FieldValue {
	return FieldValue{kind: kindString, str: s}
}

// isString reports whether the value participates in join concatenation.
// Debug-formatted values render as strings but never join.
func (v FieldValue) isString() bool {
	return v.kind == kindString
}

// writeJSON appends the value to a jsoniter stream.
func (v FieldValue) writeJSON(stream *jsoniter.Stream) {
	switch v.kind {
	case kindInt64:
		stream.WriteInt64(int64(v.num))
	case kindUint64:
		stream.WriteUint64(v.num)
	case kindFloat64:
		stream.WriteFloat64(math.Float64frombits(v.num))
	case kindBool:
		stream.WriteBool(v.num != 0)
	default:
		stream.WriteString(v.str)
	}
}

// text renders the value for the human-readable mode.
func (v FieldValue) text() string {
	switch v.kind {
	case kindInt64:
		return strconv.FormatInt(int64(v.num), 10)
	case kindUint64:
		return strconv.FormatUint(v.num, 10)
	case kindFloat64:
		return strconv.FormatFloat(math.Float64frombits(v.num), 'f', -1, 64)
	case kindBool:
		return strconv.FormatBool(v.num != 0)
	default:
		return v.str
	}
}
