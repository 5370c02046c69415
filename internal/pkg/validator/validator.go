package validator

import (
	"bytes"
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validation
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// NormalizeEmail lowercases and trims an email so stores can match it exactly.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidURL accepts absolute http(s) URLs only.
func IsValidURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// IntField decodes a JSON integer that may arrive as a number or a numeric string.
// Decoding never fails; malformed input is reported through Valid so that it
// surfaces as a field-level validation error.
type IntField struct {
	Value int
	Set   bool
	Valid bool
	Raw   string
}

// NewIntField returns a set, valid field holding v.
func NewIntField(v int) IntField {
	return IntField{Value: v, Set: true, Valid: true, Raw: strconv.Itoa(v)}
}

func (f *IntField) UnmarshalJSON(data []byte) error {
	f.Set = true
	f.Raw = string(data)
	f.Valid = false

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		f.Set = false
		return nil
	}

	var s string
	if len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
	} else {
		s = string(trimmed)
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	f.Value = n
	f.Valid = true
	return nil
}

func (f IntField) MarshalJSON() ([]byte, error) {
	if !f.Set || !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}
