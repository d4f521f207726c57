package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Required rejects zero values.
var Required = newRule(func(v any) error {
	if isZero(v) {
		return errors.New("is required")
	}
	return nil
})

// NoSpace rejects strings containing whitespace.
var NoSpace = newRule(func(v any) error {
	if s, ok := v.(string); ok && strings.ContainsAny(s, " \t\r\n") {
		return errors.New("must not contain whitespace")
	}
	return nil
})

// MaxLen rejects strings longer than max bytes.
func MaxLen(max int) Rule {
	return newRule(func(v any) error {
		if s, ok := v.(string); ok && len(s) > max {
			return fmt.Errorf("length must be at most %d", max)
		}
		return nil
	})
}

// Range rejects numbers outside [min, max]. Non-numeric values pass.
func Range(min, max float64) Rule {
	return newRule(func(v any) error {
		f, ok := toFloat(v)
		if ok && (f < min || f > max) {
			return fmt.Errorf("value must be between %v and %v", min, max)
		}
		return nil
	})
}

// In accepts only the listed values.
func In(values ...any) Rule {
	return newRule(func(v any) error {
		for _, allowed := range values {
			if allowed == v {
				return nil
			}
		}
		return fmt.Errorf("%v is not one of %v", v, values)
	})
}

func toFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
