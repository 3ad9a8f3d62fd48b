// Package validate provides struct-tag validation for request bodies.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty
//	nullable            if empty, skip all remaining rules for this field
//	email               valid email address
//	min=N               minimum string length
//	max=N               maximum string length
//	in=a,b,c            value must be one of the listed options
//
// Field names in the returned error map come from the `json` tag.
package validate

import (
	"fmt"
	"net/mail"
	"reflect"
	"strconv"
	"strings"
)

// Struct validates dest (a struct or pointer to struct) and returns a map
// of field name → first failing rule message. An empty map means valid.
func Struct(dest interface{}) map[string]string {
	errs := map[string]string{}

	v := reflect.ValueOf(dest)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return errs
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errs
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		name := jsonName(field)
		value := v.Field(i)

		if msg := check(value, strings.Split(tag, ",")); msg != "" {
			errs[name] = msg
		}
	}

	return errs
}

// HasErrors reports whether the map from Struct contains any failures.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return strings.ToLower(field.Name)
	}
	if idx := strings.IndexByte(tag, ','); idx >= 0 {
		tag = tag[:idx]
	}
	return tag
}

func check(value reflect.Value, rules []string) string {
	str, empty := stringValue(value)

	for i := 0; i < len(rules); i++ {
		rule := strings.TrimSpace(rules[i])
		switch {
		case rule == "required":
			if empty {
				return "is required"
			}
		case rule == "nullable":
			if empty {
				return ""
			}
		case rule == "email":
			if _, err := mail.ParseAddress(str); err != nil {
				return "must be a valid email address"
			}
		case strings.HasPrefix(rule, "min="):
			n, _ := strconv.Atoi(rule[len("min="):])
			if len(str) < n {
				return fmt.Sprintf("must be at least %d characters", n)
			}
		case strings.HasPrefix(rule, "max="):
			n, _ := strconv.Atoi(rule[len("max="):])
			if len(str) > n {
				return fmt.Sprintf("must be at most %d characters", n)
			}
		case strings.HasPrefix(rule, "in="):
			// in= consumes the rest of the rule list: options contain commas.
			options := append([]string{rule[len("in="):]}, rules[i+1:]...)
			for _, opt := range options {
				if str == strings.TrimSpace(opt) {
					return ""
				}
			}
			return fmt.Sprintf("must be one of: %s", strings.Join(options, ", "))
		}
	}

	return ""
}

// stringValue renders the field for rule checks and reports emptiness.
// Pointers are dereferenced; a nil pointer counts as empty.
func stringValue(v reflect.Value) (string, bool) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "", true
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.String:
		s := v.String()
		return s, s == ""
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), v.Float() == 0
	default:
		return fmt.Sprintf("%v", v.Interface()), v.IsZero()
	}
}
