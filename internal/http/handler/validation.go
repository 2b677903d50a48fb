package handler

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Field messages for request-shape failures the decoder catches before the
// service sees the value.
const (
	msgValidInteger = "A valid integer is required."
	msgValidNumber  = "A valid number is required."
	msgValidBoolean = "Must be a valid boolean."
)

// jsonString accepts either a JSON string or a bare number literal, so price
// survives both {"price":"10.50"} and {"price":10.5} without float rounding.
type jsonString struct {
	value   string
	invalid bool
}

func (s *jsonString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			s.invalid = true
			return nil
		}
		s.value = v
		return nil
	}
	if c := b[0]; c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9') {
		s.value = string(b)
		return nil
	}
	s.invalid = true
	return nil
}

// jsonUint accepts a JSON number or a numeric string for foreign-key ids.
// Decode never fails; shape problems are reported per field instead of
// aborting the whole payload.
type jsonUint struct {
	value   uint
	set     bool
	invalid bool
}

func (u *jsonUint) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			u.invalid = true
			return nil
		}
		b = []byte(v)
	}
	n, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		u.invalid = true
		return nil
	}
	u.value = uint(n)
	u.set = true
	return nil
}

type jsonBool struct {
	value   bool
	invalid bool
}

func (v *jsonBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			v.invalid = true
			return nil
		}
		b = []byte(s)
	}
	parsed, err := strconv.ParseBool(string(b))
	if err != nil {
		v.invalid = true
		return nil
	}
	v.value = parsed
	return nil
}
