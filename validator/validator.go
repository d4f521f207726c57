package validator

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// ValidationErrors maps a field path to the errors its rules reported.
type ValidationErrors map[string][]error

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var sb strings.Builder
	for _, field := range fields {
		for _, err := range v[field] {
			if sb.Len() > 0 {
				sb.WriteString("; ")
			}
			fmt.Fprintf(&sb, "%s: %v", field, err)
		}
	}
	return sb.String()
}

// Rule checks a single value. The modifiers return a copy, so package-level
// rules such as Required can be refined without being changed.
type Rule interface {
	Validate(value any) error
	// Msg replaces the rule's default error text.
	Msg(msg string) Rule
	// Optional skips the rule for zero values.
	Optional() Rule
	// When skips the rule unless cond reports true.
	When(cond func() bool) Rule
}

type rule struct {
	check    func(value any) error
	msg      string
	optional bool
	when     func() bool
}

func newRule(check func(value any) error) Rule {
	return rule{check: check}
}

func (r rule) Validate(value any) error {
	if r.when != nil && !r.when() {
		return nil
	}
	if r.optional && isZero(value) {
		return nil
	}
	err := r.check(value)
	if err != nil && r.msg != "" {
		return fmt.Errorf("%s", r.msg)
	}
	return err
}

func (r rule) Msg(msg string) Rule        { r.msg = msg; return r }
func (r rule) Optional() Rule             { r.optional = true; return r }
func (r rule) When(cond func() bool) Rule { r.when = cond; return r }

func isZero(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).IsZero()
}

// Rules maps field paths of a struct to the rules checked against them. A
// path is either a field name or "Field.key" for an entry of a map field
// with string keys; a missing entry is checked as the map's zero value.
type Rules map[string][]Rule

// Validate checks every path of the struct (or pointer to struct) value and
// collects all failures. Paths naming missing or unexported fields are
// ignored.
func (r Rules) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("validator: value must be a struct or pointer to struct, got %T", value)
	}

	errs := make(ValidationErrors)
	for path, rules := range r {
		val, ok := lookup(rv, path)
		if !ok {
			continue
		}
		for _, rule := range rules {
			if err := rule.Validate(val); err != nil {
				errs[path] = append(errs[path], err)
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func lookup(rv reflect.Value, path string) (any, bool) {
	name, key, nested := strings.Cut(path, ".")
	field := rv.FieldByName(name)
	if !field.IsValid() || !field.CanInterface() {
		return nil, false
	}
	if !nested {
		return field.Interface(), true
	}
	if field.Kind() != reflect.Map || field.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	entry := field.MapIndex(reflect.ValueOf(key).Convert(field.Type().Key()))
	if !entry.IsValid() {
		return reflect.Zero(field.Type().Elem()).Interface(), true
	}
	return entry.Interface(), true
}
