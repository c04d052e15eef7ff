package schema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// converter assigns a raw cell value to dst, converting as needed.
type converter func(dst reflect.Value, raw any) error

// timeLayouts are tried in order when a date cell arrives as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// literalOf returns the backend-neutral literal for a field value:
// int64, uint64, float64, string, bool, time.Time, []byte or nil.
func literalOf(v reflect.Value) any {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Type() {
	case timeType:
		return v.Interface().(time.Time)
	case uuidType:
		return v.Interface().(uuid.UUID).String()
	}
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		return v.String()
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		return v.Bytes()
	}
	return v.Interface()
}

// converterFor builds the converter for a field type once, at resolution time.
func converterFor(t reflect.Type) (converter, error) {
	if t.Kind() == reflect.Pointer {
		elem, err := converterFor(t.Elem())
		if err != nil {
			return nil, err
		}
		return func(dst reflect.Value, raw any) error {
			if isEmpty(raw) {
				dst.Set(reflect.Zero(t))
				return nil
			}
			p := reflect.New(t.Elem())
			if err := elem(p.Elem(), raw); err != nil {
				return err
			}
			dst.Set(p)
			return nil
		}, nil
	}

	switch t {
	case timeType:
		return emptyAsZero(setTime), nil
	case uuidType:
		return emptyAsZero(setUUID), nil
	case bytesType:
		return emptyAsZero(setBytes), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return emptyAsZero(setBool), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return emptyAsZero(setInt), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return emptyAsZero(setUint), nil
	case reflect.Float32, reflect.Float64:
		return emptyAsZero(setFloat), nil
	case reflect.String:
		return emptyAsZero(setString), nil
	}
	return nil, fmt.Errorf("unsupported field type %s", t)
}

func isEmpty(raw any) bool {
	if raw == nil {
		return true
	}
	s, ok := raw.(string)
	return ok && strings.TrimSpace(s) == ""
}

func emptyAsZero(c converter) converter {
	return func(dst reflect.Value, raw any) error {
		if isEmpty(raw) {
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		}
		return c(dst, raw)
	}
}

func setString(dst reflect.Value, raw any) error {
	switch x := raw.(type) {
	case string:
		dst.SetString(x)
	case []byte:
		dst.SetString(string(x))
	case float64:
		dst.SetString(strconv.FormatFloat(x, 'f', -1, 64))
	case time.Time:
		dst.SetString(x.Format(time.RFC3339))
	default:
		dst.SetString(fmt.Sprint(x))
	}
	return nil
}

func setBool(dst reflect.Value, raw any) error {
	switch x := raw.(type) {
	case bool:
		dst.SetBool(x)
		return nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return fmt.Errorf("cannot convert %q to bool", x)
		}
		dst.SetBool(b)
		return nil
	}
	f, err := toFloat(raw)
	if err != nil {
		return err
	}
	dst.SetBool(f != 0)
	return nil
}

func setInt(dst reflect.Value, raw any) error {
	n, err := toInt(raw)
	if err != nil {
		return err
	}
	if dst.OverflowInt(n) {
		return fmt.Errorf("value %d overflows %s", n, dst.Type())
	}
	dst.SetInt(n)
	return nil
}

func setUint(dst reflect.Value, raw any) error {
	var u uint64
	if x, ok := raw.(uint64); ok {
		u = x
	} else {
		n, err := toInt(raw)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("value %d overflows %s", n, dst.Type())
		}
		u = uint64(n)
	}
	if dst.OverflowUint(u) {
		return fmt.Errorf("value %d overflows %s", u, dst.Type())
	}
	dst.SetUint(u)
	return nil
}

func setFloat(dst reflect.Value, raw any) error {
	f, err := toFloat(raw)
	if err != nil {
		return err
	}
	dst.SetFloat(f)
	return nil
}

func setTime(dst reflect.Value, raw any) error {
	switch x := raw.(type) {
	case time.Time:
		dst.Set(reflect.ValueOf(x))
		return nil
	case string:
		s := strings.TrimSpace(x)
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			return setSerial(dst, serial)
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				dst.Set(reflect.ValueOf(t))
				return nil
			}
		}
		return fmt.Errorf("cannot convert %q to time", x)
	}
	serial, err := toFloat(raw)
	if err != nil {
		return err
	}
	return setSerial(dst, serial)
}

// setSerial interprets an Excel serial date in the 1900 date system.
func setSerial(dst reflect.Value, serial float64) error {
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return err
	}
	dst.Set(reflect.ValueOf(t))
	return nil
}

func setUUID(dst reflect.Value, raw any) error {
	var s string
	switch x := raw.(type) {
	case string:
		s = x
	case uuid.UUID:
		dst.Set(reflect.ValueOf(x))
		return nil
	default:
		s = fmt.Sprint(x)
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	dst.Set(reflect.ValueOf(id))
	return nil
}

func setBytes(dst reflect.Value, raw any) error {
	switch x := raw.(type) {
	case []byte:
		dst.SetBytes(append([]byte(nil), x...))
	case string:
		dst.SetBytes([]byte(x))
	default:
		return fmt.Errorf("cannot convert %T to bytes", raw)
	}
	return nil
}

func toInt(raw any) (int64, error) {
	switch x := raw.(type) {
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to integer", x)
		}
		return integral(f)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	}
	rv := reflect.ValueOf(raw)
	switch {
	case rv.CanInt():
		return rv.Int(), nil
	case rv.CanUint():
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", u)
		}
		return int64(u), nil
	case rv.CanFloat():
		return integral(rv.Float())
	}
	return 0, fmt.Errorf("cannot convert %T to integer", raw)
}

func integral(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("value %v is not an integer", f)
	}
	return int64(f), nil
}

func toFloat(raw any) (float64, error) {
	if s, ok := raw.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to number", s)
		}
		return f, nil
	}
	rv := reflect.ValueOf(raw)
	switch {
	case rv.CanFloat():
		return rv.Float(), nil
	case rv.CanInt():
		return float64(rv.Int()), nil
	case rv.CanUint():
		return float64(rv.Uint()), nil
	}
	return 0, fmt.Errorf("cannot convert %T to number", raw)
}
