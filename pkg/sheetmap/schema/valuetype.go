package schema

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// ValueType is the semantic type of a column. It selects the default display
// format and constrains which Go field kinds may back the column.
type ValueType int

const (
	TypePrimitive ValueType = iota
	TypeText
	TypeDate
	TypeDateTime
	TypeDecimal
	TypeCurrency
	TypePercentage
	TypeBoolean
	TypeBinary
)

var valueTypeNames = map[ValueType]string{
	TypePrimitive:  "primitive",
	TypeText:       "text",
	TypeDate:       "date",
	TypeDateTime:   "datetime",
	TypeDecimal:    "decimal",
	TypeCurrency:   "currency",
	TypePercentage: "percentage",
	TypeBoolean:    "boolean",
	TypeBinary:     "binary",
}

// String returns the tag name of the value type.
func (t ValueType) String() string {
	if s, ok := valueTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseValueType parses a tag value such as "currency".
func ParseValueType(s string) (ValueType, bool) {
	for t, name := range valueTypeNames {
		if name == s {
			return t, true
		}
	}
	return TypePrimitive, false
}

// DefaultFormat returns the number format used when a column declares none.
func (t ValueType) DefaultFormat() string {
	switch t {
	case TypeDate:
		return "yyyy-mm-dd"
	case TypeDateTime:
		return "yyyy-mm-dd hh:mm:ss"
	case TypeDecimal:
		return "0.00"
	case TypeCurrency:
		return `"$"#,##0.00`
	case TypePercentage:
		return "0.00%"
	default:
		return ""
	}
}

var (
	timeType  = reflect.TypeOf(time.Time{})
	uuidType  = reflect.TypeOf(uuid.UUID{})
	bytesType = reflect.TypeOf([]byte(nil))
)

// inferValueType maps a Go field type to its natural semantic type.
// The boolean is false when the type cannot back a column.
func inferValueType(t reflect.Type) (ValueType, bool) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case timeType:
		return TypeDateTime, true
	case uuidType:
		return TypeText, true
	case bytesType:
		return TypeBinary, true
	}
	switch t.Kind() {
	case reflect.Bool:
		return TypeBoolean, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return TypePrimitive, true
	case reflect.String:
		return TypeText, true
	}
	return TypePrimitive, false
}

// compatible reports whether a declared semantic type may be stored in a
// field of the inferred type.
func compatible(declared, inferred ValueType, t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch declared {
	case TypeDecimal, TypeCurrency, TypePercentage:
		return inferred == TypePrimitive
	case TypeDate, TypeDateTime:
		return t == timeType
	case TypeBoolean:
		return inferred == TypeBoolean
	case TypeBinary:
		return inferred == TypeBinary
	case TypeText, TypePrimitive:
		return inferred != TypeBinary
	}
	return false
}
