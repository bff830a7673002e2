package middleware

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the JSON name of the field.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(f.Tag.Get("query"), ",", 2)[0]
		}
		if name == "" {
			name = f.Name
		}
		return name
	})
	v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseISODate(fl.Field().String())
		return err == nil
	})
	return v
}

// ParseISODate accepts a calendar date (2024-03-15, local midnight) or an
// RFC 3339 timestamp.
func ParseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

var messages = map[string]string{
	"required": "is required!",
	"gt":       "must be greater than %s!",
	"min":      "must contain at least %s item(s)!",
	"max":      "must contain at most %s item(s)!",
	"datetime": "must be a date in YYYY-MM-DD format!",
	"isodate":  "must be an ISO date (YYYY-MM-DD)!",
	"unique":   "must not contain duplicates!",
	"uuid":     "must be a valid UUID!",
	"alphanum": "must contain only letters and digits!",
}

// ValidateStruct runs struct tag validation and returns field errors keyed by
// JSON field name, or nil when v is valid.
func ValidateStruct(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return map[string]string{"body": err.Error()}
	}

	out := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		key := fieldKey(fe)
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "is invalid!"
		}
		if strings.Contains(msg, "%s") {
			msg = strings.Replace(msg, "%s", fe.Param(), 1)
		}
		out[key] = key + " " + msg
	}
	return out
}

// fieldKey drops the top-level struct name from the namespace: "Req.items[0].id" -> "items[0].id".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
