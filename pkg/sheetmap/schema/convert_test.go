package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnSet_ConvertsRawValues(t *testing.T) {
	s, err := NewResolver(nil).Resolve(reflect.TypeOf(typed{}))
	require.NoError(t, err)

	id := uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")
	e := s.New().(*typed)

	require.NoError(t, s.Column("Amount").Set(e, "12.5"))
	require.NoError(t, s.Column("Ratio").Set(e, 0.25))
	require.NoError(t, s.Column("Born").Set(e, "2024-03-01"))
	require.NoError(t, s.Column("Ref").Set(e, id.String()))
	require.NoError(t, s.Column("Active").Set(e, "1"))
	require.NoError(t, s.Column("Count").Set(e, "7"))
	require.NoError(t, s.Column("Seen").Set(e, ""))
	require.NoError(t, s.Column("Portrait").Set(e, []byte{1, 2}))

	assert.Equal(t, 12.5, e.Amount)
	assert.Equal(t, 0.25, e.Ratio)
	assert.True(t, e.Born.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, id, e.Ref)
	assert.True(t, e.Active)
	require.NotNil(t, e.Count)
	assert.Equal(t, 7, *e.Count)
	assert.Nil(t, e.Seen)
	assert.Equal(t, []byte{1, 2}, e.Portrait)
}

func TestColumnSet_ExcelSerialDate(t *testing.T) {
	s, err := NewResolver(nil).Resolve(reflect.TypeOf(typed{}))
	require.NoError(t, err)

	e := s.New().(*typed)
	// 45352 is 2024-03-01 in the 1900 date system.
	require.NoError(t, s.Column("Born").Set(e, "45352"))
	assert.Equal(t, 2024, e.Born.Year())
	assert.Equal(t, time.March, e.Born.Month())
	assert.Equal(t, 1, e.Born.Day())
}

func TestColumnSet_Errors(t *testing.T) {
	s, err := NewResolver(nil).Resolve(reflect.TypeOf(typed{}))
	require.NoError(t, err)
	e := s.New()

	tests := []struct {
		field string
		raw   any
	}{
		{"Count", "seven"},
		{"Count", 1.5},
		{"Active", "maybe"},
		{"Amount", "twelve"},
		{"Born", "not a date"},
		{"Ref", "not-a-uuid"},
		{"Portrait", 42},
	}
	for _, tt := range tests {
		assert.Error(t, s.Column(tt.field).Set(e, tt.raw), "%s <- %v", tt.field, tt.raw)
	}
}

func TestColumnGet_Literals(t *testing.T) {
	s, err := NewResolver(nil).Resolve(reflect.TypeOf(typed{}))
	require.NoError(t, err)

	n := 3
	id := uuid.New()
	e := &typed{Amount: 9.5, Ref: id, Active: true, Count: &n}

	assert.Equal(t, 9.5, s.Column("Amount").Get(e))
	assert.Equal(t, id.String(), s.Column("Ref").Get(e))
	assert.Equal(t, true, s.Column("Active").Get(e))
	assert.Equal(t, int64(3), s.Column("Count").Get(e))
	assert.Nil(t, s.Column("Seen").Get(e))
	assert.Nil(t, s.Column("Portrait").Get(e))
}

func TestCompareLiterals(t *testing.T) {
	tests := []struct {
		a, b     any
		expected int
	}{
		{int64(2), int64(10), -1},
		{"10", "9", 1},
		{"b", "a", 1},
		{uint64(4), 4.0, 0},
	}
	for _, tt := range tests {
		if got := compareLiterals(tt.a, tt.b); got != tt.expected {
			t.Errorf("compareLiterals(%v, %v) = %d, expected %d", tt.a, tt.b, got, tt.expected)
		}
	}
}
