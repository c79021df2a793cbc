package spanlog

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
)

// jsonCfg avoids HTML escaping; records are NDJSON, not markup.
var jsonCfg = jsoniter.Config{EscapeHTML: false}.Froze()

var levelColors = map[Level]*color.Color{
	LevelTrace: color.New(color.FgMagenta),
	LevelDebug: color.New(color.FgBlue),
	LevelInfo:  color.New(color.FgGreen),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
}

// assemble merges event-local fields with the active span's stored context
// and serializes a single record. span may be nil when no span is active.
func (l *Logger) assemble(level Level, msg string, fields []Field, span *fieldMap, file string, line int, module string) ([]byte, error) {
	// Event-local merges always overwrite; join policies apply to span
	// storage only.
	eventMap := newFieldMap(Overwrite())
	for _, f := range fields {
		eventMap.observe(f.Key, f.Value)
	}

	if l.json {
		return l.assembleJSON(level, msg, eventMap, span, file, line, module)
	}
	return l.assemblePretty(level, msg, eventMap, span, file, line, module), nil
}

func (l *Logger) assembleJSON(level Level, msg string, eventMap, span *fieldMap, file string, line int, module string) ([]byte, error) {
	stream := jsoniter.NewStream(jsonCfg, nil, 256)
	stream.WriteObjectStart()

	emitted := make(map[string]bool, eventMap.len()+8)
	first := true
	entry := func(key string) {
		if !first {
			stream.WriteMore()
		}
		first = false
		stream.WriteObjectField(key)
		emitted[key] = true
	}

	if l.time.mode != timeOff {
		entry(casedKey("time", l.keyCase))
		stream.WriteString(l.timestamp())
	}

	switch l.levelFmt {
	case LevelUppercase:
		entry(casedKey("level", l.keyCase))
		stream.WriteString(level.String())
	case LevelLowercase:
		entry(casedKey("level", l.keyCase))
		stream.WriteString(strings.ToLower(level.String()))
	case LevelNumber:
		entry(casedKey("level", l.keyCase))
		stream.WriteUint8(uint8(level))
	case LevelOff:
	}

	if l.module {
		entry(casedKey("module", l.keyCase))
		stream.WriteString(module)
	}
	if l.file {
		entry(casedKey("file", l.keyCase))
		stream.WriteString(file + ":" + strconv.Itoa(line))
	}

	entry(casedKey(l.messageKey, l.keyCase))
	stream.WriteString(msg)

	// Event fields win on collision, except the span-name field: while a
	// span is active that key belongs to the span context.
	appendFields := func(m *fieldMap, fromSpan bool) {
		m.each(func(name string, value FieldValue) {
			if name == spanField && span != nil {
				if !fromSpan || !l.span {
					return
				}
			}
			key := casedKey(name, l.keyCase)
			if emitted[key] {
				return
			}
			entry(key)
			value.writeJSON(stream)
		})
	}

	appendFields(eventMap, false)
	if span != nil {
		appendFields(span, true)
	}

	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, stream.Error
	}
	return stream.Buffer(), nil
}

func (l *Logger) assemblePretty(level Level, msg string, eventMap, span *fieldMap, file string, line int, module string) []byte {
	var head strings.Builder
	if l.time.mode != timeOff {
		head.WriteString(l.timestamp())
		head.WriteByte(' ')
	}
	switch l.levelFmt {
	case LevelUppercase:
		head.WriteString(level.String())
		head.WriteByte(' ')
	case LevelLowercase:
		head.WriteString(strings.ToLower(level.String()))
		head.WriteByte(' ')
	case LevelNumber:
		head.WriteString(strconv.Itoa(int(level)))
		head.WriteByte(' ')
	case LevelOff:
	}
	if msg == "" {
		msg = "event triggered"
	}
	head.WriteString(msg)

	message := strings.TrimSpace(head.String())
	if c, ok := levelColors[level]; ok && l.color {
		message = c.Sprint(message)
	}

	type kv struct {
		key   string
		value string
	}
	var lines []kv
	emitted := make(map[string]bool, eventMap.len()+4)
	push := func(key, value string) {
		if emitted[key] {
			return
		}
		emitted[key] = true
		lines = append(lines, kv{key, value})
	}

	if l.module {
		push(casedKey("module", l.keyCase), module)
	}
	if l.file {
		push(casedKey("file", l.keyCase), file+":"+strconv.Itoa(line))
	}
	pushFields := func(m *fieldMap, fromSpan bool) {
		m.each(func(name string, value FieldValue) {
			if name == l.messageKey {
				return
			}
			if name == spanField && span != nil {
				if !fromSpan || !l.span {
					return
				}
			}
			push(casedKey(name, l.keyCase), prettyValue(value))
		})
	}
	pushFields(eventMap, false)
	if span != nil {
		pushFields(span, true)
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].key < lines[j].key })
	maxLen := 0
	for _, f := range lines {
		if len(f.key) > maxLen {
			maxLen = len(f.key)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(message)
	for _, f := range lines {
		buf.WriteString("\n    ")
		buf.WriteString(f.key)
		buf.WriteString(": ")
		buf.WriteString(strings.Repeat(" ", maxLen-len(f.key)))
		buf.WriteString(f.value)
	}
	return buf.Bytes()
}

// prettyValue re-indents embedded newlines under the field column.
func prettyValue(v FieldValue) string {
	return strings.ReplaceAll(v.text(), "\n", "\n    ")
}

func (l *Logger) timestamp() string {
	now := l.clock.Now()
	if l.timezone == TimeZoneUTC {
		now = now.UTC()
	} else {
		now = now.Local()
	}
	return formatTime(now, l.time)
}
