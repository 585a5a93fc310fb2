package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TimeLayout is the serialized form of record timestamps (microsecond precision).
const TimeLayout = "2006-01-02T15:04:05.000000"

// KeySeparator joins kind and id in registry keys.
const KeySeparator = "."

// FormatTime renders t in TimeLayout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a timestamp written by FormatTime. Second precision
// timestamps without a fractional part are accepted too.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range []string{TimeLayout, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// Key builds the registry key of a record.
func Key(kind Kind, id string) string {
	return string(kind) + KeySeparator + id
}

// Record is a typed attribute bag with a fixed identity and lifecycle
// timestamps.
type Record struct {
	kind      Kind
	id        string
	createdAt time.Time
	updatedAt time.Time
	attrs     Attributes
}

// NewRecord creates a record of kind k with both timestamps set to now.
func NewRecord(k Kind, id string, now time.Time) (*Record, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	now = now.UTC().Truncate(time.Microsecond)
	return &Record{
		kind:      k,
		id:        id,
		createdAt: now,
		updatedAt: now,
		attrs:     make(Attributes),
	}, nil
}

func (r *Record) Kind() Kind { return r.kind }
func (r *Record) ID() string { return r.id }
func (r *Record) Key() string { return Key(r.kind, r.id) }
func (r *Record) CreatedAt() time.Time { return r.createdAt }
func (r *Record) UpdatedAt() time.Time { return r.updatedAt }

// Attr looks an attribute up on the record, then in the kind defaults.
func (r *Record) Attr(name string) (Value, bool) {
	if v, ok := r.attrs[name]; ok {
		return v, true
	}
	return r.kind.Default(name)
}

// Own returns an attribute only if it was set on the record itself.
func (r *Record) Own(name string) (Value, bool) {
	v, ok := r.attrs[name]
	return v, ok
}

// Attributes returns a copy of the attributes set on the record.
func (r *Record) Attributes() Attributes {
	out := make(Attributes, len(r.attrs))
	for k, v := range r.attrs {
		out[k] = v.Clone()
	}
	return out
}

// Set assigns an attribute. Reserved names are rejected.
func (r *Record) Set(name string, v Value) error {
	if IsReserved(name) {
		return fmt.Errorf("%w: %s", ErrReservedAttribute, name)
	}
	if name == "" {
		return fmt.Errorf("%w: empty attribute name", ErrInvalidValue)
	}
	r.attrs[name] = v
	return nil
}

// Touch advances the modification timestamp to now. The timestamp always
// moves forward by at least one microsecond.
func (r *Record) Touch(now time.Time) {
	next := now.UTC().Truncate(time.Microsecond)
	if !next.After(r.updatedAt) {
		next = r.updatedAt.Add(time.Microsecond)
	}
	r.updatedAt = next
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	c.attrs = r.Attributes()
	return &c
}

// ToMap serializes the record into a flat document carrying the kind tag
// and string timestamps.
func (r *Record) ToMap() map[string]any {
	m := make(map[string]any, len(r.attrs)+4)
	for k, v := range r.attrs {
		m[k] = v.Interface()
	}
	m[AttrID] = r.id
	m[AttrCreatedAt] = FormatTime(r.createdAt)
	m[AttrUpdatedAt] = FormatTime(r.updatedAt)
	m[AttrClass] = string(r.kind)
	return m
}

// FromMap rebuilds a record from a document written by ToMap.
func FromMap(m map[string]any) (*Record, error) {
	className, _ := m[AttrClass].(string)
	k, ok := ParseKind(className)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, className)
	}
	id, _ := m[AttrID].(string)
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidRecord)
	}
	createdAt, err := timeField(m, AttrCreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := timeField(m, AttrUpdatedAt)
	if err != nil {
		return nil, err
	}
	if updatedAt.Before(createdAt) {
		return nil, fmt.Errorf("%w: %s updated before created", ErrInvalidRecord, id)
	}

	r := &Record{
		kind:      k,
		id:        id,
		createdAt: createdAt,
		updatedAt: updatedAt,
		attrs:     make(Attributes, len(m)),
	}
	for name, raw := range m {
		if IsReserved(name) || raw == nil {
			continue
		}
		v, err := ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", id, name, err)
		}
		r.attrs[name] = v
	}
	return r, nil
}

func timeField(m map[string]any, name string) (time.Time, error) {
	switch v := m[name].(type) {
	case string:
		return ParseTime(v)
	case time.Time:
		return v.UTC().Truncate(time.Microsecond), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %s missing", ErrInvalidTimestamp, name)
	}
}

// String renders the record as "[Kind] (id) {attributes}".
func (r *Record) String() string {
	m := make(map[string]any, len(r.attrs)+3)
	for k, v := range r.attrs {
		m[k] = v.JSON()
	}
	m[AttrID] = r.id
	m[AttrCreatedAt] = FormatTime(r.createdAt)
	m[AttrUpdatedAt] = FormatTime(r.updatedAt)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] (%s) ", r.kind, r.id)
	data, err := marshalSorted(m)
	if err != nil {
		fmt.Fprintf(&b, "%v", m)
		return b.String()
	}
	b.Write(data)
	return b.String()
}

// marshalSorted writes a flat JSON object with sorted keys and ", "/": "
// separators.
func marshalSorted(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		key, err := marshalJSON(k)
		if err != nil {
			return nil, err
		}
		val, err := marshalJSON(m[k])
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteString(": ")
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// marshalJSON encodes v without escaping <, > and &, matching the store file.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
