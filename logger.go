package spanlog

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/zoobzio/clockz"
)

// minLevelEnv overrides the default minimum level at construction time.
const minLevelEnv = "SPANLOG_LEVEL"

// FilterFunc decides whether an event at the given level is emitted.
// Filtering policy lives outside the engine; this is its hook.
type FilterFunc func(Level) bool

// Logger turns span/event notifications into serialized output records,
// propagating key/value context down the span hierarchy.
//
// Configure it with the chained methods, then install it with On/TryOn/
// OnScoped or use its methods directly. Configuration must finish before
// the logger is shared across goroutines; the emit path itself is safe
// for concurrent use.
//
//nolint:govet // Field order optimized for readability over memory
type Logger struct {
	sink       *sinkGuard
	registry   *registry
	clock      clockz.Clock
	filter     FilterFunc
	errHandler func(error)
	messageKey string
	time       TimeFormat
	timezone   TimeZone
	levelFmt   LevelFormat
	keyCase    Case
	spanJoin   SpanJoin
	fieldJoin  JoinPolicy
	minLevel   Level
	json       bool
	color      bool
	file       bool
	module     bool
	span       bool
}

// New creates a logger with JSON defaults: RFC3339-millisecond UTC
// timestamps, uppercase levels, span names joined with "::", one JSON
// object per line on stdout.
func New() *Logger {
	return &Logger{
		sink:       newSinkGuard(os.Stdout),
		registry:   newRegistry(),
		clock:      clockz.RealClock,
		messageKey: "message",
		time:       TimeRFC3339(PrecisionMillis, true),
		timezone:   TimeZoneUTC,
		levelFmt:   LevelUppercase,
		spanJoin:   SpanJoinWith("::"),
		fieldJoin:  Overwrite(),
		minLevel:   envMinLevel(),
		json:       true,
		span:       true,
	}
}

// Pretty creates a logger with human-readable defaults: local wall-clock
// time, colored message lines, module and file annotations on.
func Pretty() *Logger {
	l := New()
	l.json = false
	l.color = true
	l.time = TimePrettyTime
	l.timezone = TimeZoneLocal
	l.file = true
	l.module = true
	return l
}

func envMinLevel() Level {
	if v := os.Getenv(minLevelEnv); v != "" {
		if level, err := ParseLevel(v); err == nil {
			return level
		}
	}
	return LevelInfo
}

// JSON switches between single-line JSON records and the human-readable
// block format.
func (l *Logger) JSON(on bool) *Logger {
	l.json = on
	return l
}

// Writer sets the output destination.
func (l *Logger) Writer(w io.Writer) *Logger {
	l.sink = newSinkGuard(w)
	return l
}

// Case sets the identifier style applied to emitted keys.
func (l *Logger) Case(c Case) *Logger {
	l.keyCase = c
	return l
}

// Time sets the timestamp format. TimeOff removes the timestamp.
func (l *Logger) Time(f TimeFormat) *Logger {
	l.time = f
	return l
}

// Timezone selects UTC or the local system offset for timestamps.
func (l *Logger) Timezone(tz TimeZone) *Logger {
	l.timezone = tz
	return l
}

// Level sets how the severity renders.
func (l *Logger) Level(f LevelFormat) *Logger {
	l.levelFmt = f
	return l
}

// SpanJoin sets the policy for the span-name field across nested spans.
func (l *Logger) SpanJoin(j SpanJoin) *Logger {
	l.spanJoin = j
	return l
}

// FieldJoin sets the collision policy applied when a child span inherits
// its parent's fields and when a span re-records an existing field.
func (l *Logger) FieldJoin(p JoinPolicy) *Logger {
	l.fieldJoin = p
	return l
}

// MessageKey renames the key the message is emitted under.
func (l *Logger) MessageKey(key string) *Logger {
	l.messageKey = key
	return l
}

// File toggles the source file:line annotation.
func (l *Logger) File(on bool) *Logger {
	l.file = on
	return l
}

// Module toggles the package-path annotation.
func (l *Logger) Module(on bool) *Logger {
	l.module = on
	return l
}

// Span toggles emission of the span-name field.
func (l *Logger) Span(on bool) *Logger {
	l.span = on
	return l
}

// Color toggles per-level coloring of the message line in pretty mode.
func (l *Logger) Color(on bool) *Logger {
	l.color = on
	return l
}

// MinLevel sets the minimum emitted level. Ignored when a Filter is set.
func (l *Logger) MinLevel(level Level) *Logger {
	l.minLevel = level
	return l
}

// Filter installs an external emission filter, replacing the minimum
// level check.
func (l *Logger) Filter(fn FilterFunc) *Logger {
	l.filter = fn
	return l
}

// ErrorHandler sets the side channel for serialization failures. The
// default writes a diagnostic to stderr.
func (l *Logger) ErrorHandler(fn func(error)) *Logger {
	l.errHandler = fn
	return l
}

// WithClock returns the logger with the specified clock.
// Enables clock injection for deterministic testing.
func (l *Logger) WithClock(clock clockz.Clock) *Logger {
	l.clock = clock
	return l
}

// DroppedWrites returns the number of records dropped on sink write
// failure. Writes never abort the process.
func (l *Logger) DroppedWrites() uint64 {
	return l.sink.droppedWrites()
}

// Close releases the logger's background resources.
func (l *Logger) Close() {
	l.registry.close()
}

// StartSpan enters a new span. If the context carries a live span, the new
// span inherits a snapshot of its storage: ancestor fields resolved once,
// here, and cached for the span's lifetime. Later parent mutations are not
// reflected in the child. The span's own fields are applied on top under
// the per-field join policy, and the span-name field follows the span-join
// policy.
func (l *Logger) StartSpan(ctx context.Context, name string, fields ...Field) (context.Context, *SpanHandle) {
	if ctx == nil {
		ctx = context.Background()
	}

	var parentID string
	if parent := activeEntry(ctx); parent != nil {
		parentID = parent.id
	}

	entry := l.registry.create(name, parentID)
	parent, _ := l.registry.parentOf(entry.id)
	l.registry.attach(entry.id, l.newSpanStorage(name, parent, fields))

	bundle := &contextBundle{logger: l, entry: entry}
	newCtx := context.WithValue(ctx, bundleKey, bundle)

	return newCtx, &SpanHandle{logger: l, entry: entry}
}

// newSpanStorage builds the storage attached to a freshly created span.
func (l *Logger) newSpanStorage(name string, parent *spanEntry, fields []Field) *fieldMap {
	var storage *fieldMap
	if parent != nil {
		storage = parent.snapshot()
	} else {
		storage = newFieldMap(l.fieldJoin)
	}

	switch l.spanJoin.mode {
	case spanJoined:
		if old, ok := storage.get(spanField); ok && old.isString() {
			storage.set(spanField, stringValue(old.str+l.spanJoin.separator+name))
		} else {
			storage.set(spanField, stringValue(name))
		}
	case spanOverwrite:
		storage.set(spanField, stringValue(name))
	case spanNone:
		// No span-name field at all.
	}

	for _, f := range fields {
		storage.observe(f.Key, f.Value)
	}
	return storage
}

// Trace emits a trace-level event.
func (l *Logger) Trace(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, LevelTrace, msg, fields)
}

// Debug emits a debug-level event.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, LevelDebug, msg, fields)
}

// Info emits an info-level event.
func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, LevelInfo, msg, fields)
}

// Warn emits a warn-level event.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, LevelWarn, msg, fields)
}

// Error emits an error-level event.
func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.emit(ctx, LevelError, msg, fields)
}

// Event emits an event at an explicit level.
func (l *Logger) Event(ctx context.Context, level Level, msg string, fields ...Field) {
	l.emit(ctx, level, msg, fields)
}

// callerSkip is the fixed frame depth from a public event method to the
// user's call site. Every public event entry point sits exactly one frame
// above emit.
const callerSkip = 3

func (l *Logger) emit(ctx context.Context, level Level, msg string, fields []Field) {
	if !l.enabled(level) {
		return
	}

	var spanStorage *fieldMap
	if entry := activeEntry(ctx); entry != nil {
		spanStorage = entry.snapshot()
	}

	var file, module string
	var line int
	if l.file || l.module {
		file, line, module = callerAt(callerSkip)
	}

	buf, err := l.assemble(level, msg, fields, spanStorage, file, line, module)
	if err != nil {
		// Drop this record; neighbors stay intact.
		l.reportError(err)
		return
	}
	l.sink.emit(buf)
}

func (l *Logger) enabled(level Level) bool {
	if l.filter != nil {
		return l.filter(level)
	}
	return level >= l.minLevel
}

func (l *Logger) reportError(err error) {
	if l.errHandler != nil {
		l.errHandler(err)
		return
	}
	fmt.Fprintln(os.Stderr, "spanlog:", err)
}

// callerAt resolves the emitting call site to a trimmed file:line and the
// importing package path.
func callerAt(skip int) (file string, line int, module string) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", 0, ""
	}

	// Keep the last two path segments, the way panic traces read.
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		if idx2 := strings.LastIndexByte(file[:idx], '/'); idx2 >= 0 {
			file = file[idx2+1:]
		}
	}

	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name()
		slash := strings.LastIndexByte(name, '/')
		if dot := strings.IndexByte(name[slash+1:], '.'); dot >= 0 {
			module = name[:slash+1+dot]
		}
	}
	return file, line, module
}
