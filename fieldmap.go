package spanlog

import "strings"

const (
	// Field names carrying transport-internal metadata are never stored.
	internalPrefix = "log."
	// Raw-identifier escapes are stripped before storage.
	rawPrefix = "r#"
	// spanField is the storage key for the accumulated span name.
	spanField = "span"
)

type joinMode uint8

const (
	joinNone joinMode = iota
	joinAll
	joinSome
)

// JoinPolicy resolves field-name collisions between inherited and newly
// recorded values. Concatenation is defined for string fields only; any
// collision involving a non-string value overwrites regardless of policy.
type JoinPolicy struct {
	fields    map[string]struct{}
	separator string
	mode      joinMode
}

// Overwrite replaces the old value on every collision.
func Overwrite() JoinPolicy {
	return JoinPolicy{mode: joinNone}
}

// JoinAll concatenates old and new string values with sep on every collision.
func JoinAll(sep string) JoinPolicy {
	return JoinPolicy{mode: joinAll, separator: sep}
}

// JoinSome concatenates only the named fields; everything else overwrites.
func JoinSome(sep string, names ...string) JoinPolicy {
	fields := make(map[string]struct{}, len(names))
	for _, name := range names {
		fields[name] = struct{}{}
	}
	return JoinPolicy{mode: joinSome, separator: sep, fields: fields}
}

// joins reports whether the policy concatenates the named field, and with
// which separator.
func (p JoinPolicy) joins(name string) (string, bool) {
	switch p.mode {
	case joinAll:
		return p.separator, true
	case joinSome:
		_, ok := p.fields[name]
		return p.separator, ok
	default:
		return "", false
	}
}

type spanJoinMode uint8

const (
	spanNone spanJoinMode = iota
	spanJoined
	spanOverwrite
)

// SpanJoin governs the span-name field independently of the per-field
// policy: omit it entirely, concatenate nested names, or keep only the
// innermost name.
type SpanJoin struct {
	separator string
	mode      spanJoinMode
}

// SpanJoinNone omits the span-name field from storage entirely.
func SpanJoinNone() SpanJoin {
	return SpanJoin{mode: spanNone}
}

// SpanJoinWith concatenates nested span names with sep.
func SpanJoinWith(sep string) SpanJoin {
	return SpanJoin{mode: spanJoined, separator: sep}
}

// SpanJoinOverwrite keeps only the innermost span name.
func SpanJoinOverwrite() SpanJoin {
	return SpanJoin{mode: spanOverwrite}
}

// fieldMap accumulates typed fields in insertion order together with the
// join policy in effect when it was created.
type fieldMap struct {
	values map[string]FieldValue
	keys   []string
	policy JoinPolicy
}

func newFieldMap(policy JoinPolicy) *fieldMap {
	return &fieldMap{
		values: make(map[string]FieldValue),
		policy: policy,
	}
}

// observe ingests a single typed value. Absent names are inserted; string
// collisions under a join policy concatenate old+sep+new; everything else
// overwrites in place.
func (m *fieldMap) observe(name string, value FieldValue) {
	if strings.HasPrefix(name, internalPrefix) {
		return
	}
	name = strings.TrimPrefix(name, rawPrefix)

	old, ok := m.values[name]
	if !ok {
		m.values[name] = value
		m.keys = append(m.keys, name)
		return
	}
	if sep, join := m.policy.joins(name); join && old.isString() && value.isString() {
		m.values[name] = stringValue(old.str + sep + value.str)
		return
	}
	m.values[name] = value
}

// set stores a value directly, bypassing the join policy and reserved
// prefixes. Used for the span-name field, which has its own policy.
func (m *fieldMap) set(name string, value FieldValue) {
	if _, ok := m.values[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.values[name] = value
}

func (m *fieldMap) get(name string) (FieldValue, bool) {
	v, ok := m.values[name]
	return v, ok
}

// clone snapshots the map. Later mutation of either side is invisible to
// the other; the policy carries over.
func (m *fieldMap) clone() *fieldMap {
	c := &fieldMap{
		values: make(map[string]FieldValue, len(m.values)),
		keys:   make([]string, len(m.keys)),
		policy: m.policy,
	}
	copy(c.keys, m.keys)
	for k, v := range m.values {
		c.values[k] = v
	}
	return c
}

// each visits fields in insertion order.
func (m *fieldMap) each(fn func(name string, value FieldValue)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

func (m *fieldMap) len() int {
	return len(m.keys)
}
