package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"
)

// Minimal internal validator to avoid external dependency. Supports:
// - required
// - dateok (calendar date, YYYY-MM-DD)
// - batchok (letters, numbers, hyphen, underscore, 1-64 chars)
// - nameok (letters, numbers, space, hyphen, apostrophe, 1-100 chars)

var (
	reDateOK  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reBatchOK = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)
	reNameOK  = regexp.MustCompile(`^[A-Za-z0-9 \-']{1,100}$`)
)

// ValidateStruct inspects struct tags `validate:"..."` and returns the first
// error encountered. Non-required rules are skipped on empty values.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("ValidateStruct expects a struct or pointer to struct")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		fv := v.Field(i)
		var sval string
		if fv.IsValid() && fv.Kind() == reflect.String {
			sval = fv.String()
		}
		for _, p := range strings.Split(tag, ",") {
			switch p = strings.TrimSpace(p); p {
			case "required":
				if strings.TrimSpace(sval) == "" {
					return errors.New(field.Name + " is required")
				}
			case "dateok":
				if sval == "" {
					continue
				}
				if !reDateOK.MatchString(sval) {
					return errors.New(field.Name + " must be a YYYY-MM-DD date")
				}
				if _, err := time.Parse("2006-01-02", sval); err != nil {
					return errors.New(field.Name + " is not a valid calendar date")
				}
			case "batchok":
				if sval != "" && !reBatchOK.MatchString(sval) {
					return errors.New(field.Name + " must be 1-64 letters, digits, hyphens or underscores")
				}
			case "nameok":
				if sval != "" && !reNameOK.MatchString(sval) {
					return errors.New(field.Name + " contains invalid characters")
				}
			}
		}
	}
	return nil
}
