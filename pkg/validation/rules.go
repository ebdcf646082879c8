package validation

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formedit/pkg/schema"
)

// Fixed user-facing messages. Only the first failing rule for a field is
// reported.
const (
	MsgRequired     = "This field is required."
	MsgNotANumber   = "Please enter a valid number."
	MsgNotAnInteger = "Please enter a whole number."
	MsgInvalidEmail = "Please enter a valid email address."
	MsgInvalidURL   = "Please enter a valid URL."
	MsgNotInEnum    = "Please select one of the allowed values."
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// FieldError evaluates the validation rules for a single value against its
// effective schema. It returns "" when the value is valid. A required empty
// value fails immediately; an optional empty value short-circuits to valid
// without running any further checks.
func FieldError(value any, node schema.Node, required bool) string {
	if isEmpty(value) {
		if required {
			return MsgRequired
		}
		return ""
	}

	switch node.Type {
	case "number", "integer":
		if msg := numberError(value, node); msg != "" {
			return msg
		}
	case "string":
		if msg := stringError(value, node); msg != "" {
			return msg
		}
	}

	if len(node.Enum) > 0 && !enumContains(node.Enum, value) {
		return MsgNotInEnum
	}
	return ""
}

func numberError(value any, node schema.Node) string {
	number, ok := toNumber(value)
	if !ok {
		return MsgNotANumber
	}
	if node.Type == "integer" && number != float64(int64(number)) {
		return MsgNotAnInteger
	}
	if node.Minimum != nil && number < *node.Minimum {
		return fmt.Sprintf("Value must be at least %s.", formatNumber(*node.Minimum))
	}
	if node.Maximum != nil && number > *node.Maximum {
		return fmt.Sprintf("Value must be at most %s.", formatNumber(*node.Maximum))
	}
	return ""
}

func stringError(value any, node schema.Node) string {
	text, ok := value.(string)
	if !ok {
		text = fmt.Sprintf("%v", value)
	}
	length := len([]rune(text))
	if node.MinLength != nil && length < *node.MinLength {
		return fmt.Sprintf("Must be at least %d characters.", *node.MinLength)
	}
	if node.MaxLength != nil && length > *node.MaxLength {
		return fmt.Sprintf("Must be at most %d characters.", *node.MaxLength)
	}
	if node.Pattern != "" {
		// A malformed pattern is no constraint, never a failure.
		if re, err := regexp.Compile(node.Pattern); err == nil && !re.MatchString(text) {
			return "Value does not match the required format."
		}
	}
	switch strings.ToLower(node.Format) {
	case "email":
		if !emailPattern.MatchString(text) {
			return MsgInvalidEmail
		}
	case "uri", "url":
		parsed, err := url.Parse(text)
		if err != nil || !parsed.IsAbs() {
			return MsgInvalidURL
		}
	}
	return ""
}

func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case []any:
		return len(typed) == 0
	default:
		return false
	}
}

func toNumber(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case string:
		number, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		return number, true
	default:
		return 0, false
	}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func enumContains(enum []any, value any) bool {
	for _, candidate := range enum {
		// Enum members can be arrays or objects, which == cannot compare.
		if reflect.DeepEqual(candidate, value) {
			return true
		}
		// JSON numbers arrive as float64; tolerate integer-authored enums.
		want, wantOK := toNumber(candidate)
		got, gotOK := toNumber(value)
		if wantOK && gotOK && want == got {
			return true
		}
	}
	return false
}
