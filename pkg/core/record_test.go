package core

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	now := time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC)
	r, err := NewRecord(KindPlace, "abc", now)
	require.NoError(t, err)

	assert.Equal(t, "Place.abc", r.Key())
	assert.Equal(t, r.CreatedAt(), r.UpdatedAt())
	assert.Equal(t, "2024-05-06T07:08:09.123456", FormatTime(r.CreatedAt()))

	_, err = NewRecord(Kind("Nope"), "abc", now)
	assert.ErrorIs(t, err, ErrUnknownKind)
	_, err = NewRecord(KindUser, "", now)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestRecord_TouchIsStrictlyMonotonic(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := NewRecord(KindUser, "u", now)
	require.NoError(t, err)

	prev := r.UpdatedAt()
	for i := 0; i < 5; i++ {
		r.Touch(now) // clock did not move
		assert.True(t, r.UpdatedAt().After(prev))
		assert.False(t, r.UpdatedAt().Before(r.CreatedAt()))
		prev = r.UpdatedAt()
	}

	r.Touch(now.Add(-time.Hour)) // clock moved backwards
	assert.True(t, r.UpdatedAt().After(prev))
	assert.Equal(t, now, r.CreatedAt())
}

func TestRecord_SetRejectsReserved(t *testing.T) {
	r, err := NewRecord(KindUser, "u", time.Now())
	require.NoError(t, err)
	for _, name := range []string{"id", "created_at", "updated_at", "__class__"} {
		assert.ErrorIs(t, r.Set(name, String("x")), ErrReservedAttribute, name)
	}
	assert.NoError(t, r.Set("email", String("x")))
}

func TestRecord_AttrFallsBackToDefaults(t *testing.T) {
	r, err := NewRecord(KindPlace, "p", time.Now())
	require.NoError(t, err)

	v, ok := r.Attr("number_rooms")
	require.True(t, ok)
	assert.Equal(t, TypeInt, v.Type)

	_, ok = r.Own("number_rooms")
	assert.False(t, ok, "defaults are not instance attributes")

	_, ok = r.Attr("nickname")
	assert.False(t, ok)
}

func TestRecord_MapRoundTrip(t *testing.T) {
	now := time.Date(2024, 2, 3, 4, 5, 6, 7000, time.UTC)
	r, err := NewRecord(KindPlace, "p-1", now)
	require.NoError(t, err)
	require.NoError(t, r.Set("name", String("Loft")))
	require.NoError(t, r.Set("max_guest", Int(4)))
	require.NoError(t, r.Set("latitude", Float(37.5)))
	require.NoError(t, r.Set("amenity_ids", Strings("a", "b")))
	r.Touch(now.Add(time.Minute))

	m := r.ToMap()
	assert.Equal(t, "Place", m["__class__"])
	assert.Equal(t, "2024-02-03T04:05:06.000007", m["created_at"])

	back, err := FromMap(m)
	require.NoError(t, err)
	assert.Equal(t, r.Key(), back.Key())
	assert.Equal(t, r.String(), back.String())
	assert.Equal(t, FormatTime(r.UpdatedAt()), FormatTime(back.UpdatedAt()))
}

func TestFromMap_Invalid(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			"__class__":  "User",
			"id":         "u",
			"created_at": "2024-01-01T00:00:00.000000",
			"updated_at": "2024-01-01T00:00:01.000000",
		}
	}

	tests := []struct {
		name   string
		mutate func(m map[string]any)
		want   error
	}{
		{"unknown class", func(m map[string]any) { m["__class__"] = "Ghost" }, ErrUnknownKind},
		{"missing class", func(m map[string]any) { delete(m, "__class__") }, ErrUnknownKind},
		{"missing id", func(m map[string]any) { delete(m, "id") }, ErrInvalidRecord},
		{"bad timestamp", func(m map[string]any) { m["created_at"] = "yesterday" }, ErrInvalidTimestamp},
		{"updated before created", func(m map[string]any) { m["updated_at"] = "2023-01-01T00:00:00.000000" }, ErrInvalidRecord},
		{"unsupported value", func(m map[string]any) { m["nested"] = map[string]any{"a": 1} }, ErrInvalidValue},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := valid()
			tc.mutate(m)
			_, err := FromMap(m)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRecord_String(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := NewRecord(KindUser, "u-1", now)
	require.NoError(t, err)
	require.NoError(t, r.Set("first_name", String("Betty")))
	require.NoError(t, r.Set("score", Float(2)))

	s := r.String()
	assert.True(t, strings.HasPrefix(s, "[User] (u-1) {"), s)
	assert.Equal(t,
		`[User] (u-1) {"created_at": "2024-01-01T00:00:00.000000", "first_name": "Betty", "id": "u-1", "score": 2.0, "updated_at": "2024-01-01T00:00:00.000000"}`,
		s)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(s, "[User] (u-1) ")), &decoded))
	assert.Equal(t, "u-1", decoded["id"])
}

func TestRecord_StringKeepsHTMLCharacters(t *testing.T) {
	r, err := NewRecord(KindReview, "r-1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, r.Set("text", String("a<b>&c")))
	require.NoError(t, r.Set("tags", Strings("<x>")))

	s := r.String()
	assert.Contains(t, s, `"text": "a<b>&c"`)
	assert.Contains(t, s, `"tags": ["<x>"]`)
	assert.NotContains(t, s, `\u003c`)
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2024-01-01T10:11:12.000001", "2024-01-01T10:11:12"} {
		_, err := ParseTime(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseTime("10:11")
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}
