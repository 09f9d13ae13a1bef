package entity

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// DecodeScalar converts one JSON value into a record scalar: nil, bool,
// string, int64 (integral numbers) or float64. Objects and arrays are
// returned as their compact JSON text.
func DecodeScalar(v jsontext.Value) (any, error) {
	switch v.Kind() {
	case 'n':
		return nil, nil
	case 't':
		return true, nil
	case 'f':
		return false, nil
	case '"':
		var s string
		if err := json.Unmarshal(v, &s, jsontext.AllowInvalidUTF8(true)); err != nil {
			return nil, err
		}
		return s, nil
	case '0':
		raw := string(v)
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i, nil
		}
		return strconv.ParseFloat(raw, 64)
	case '{', '[':
		compact := v.Clone()
		if err := compact.Compact(); err != nil {
			return nil, err
		}
		return string(compact), nil
	default:
		return nil, fmt.Errorf("invalid JSON value %q", string(v))
	}
}

// UnmarshalJSON decodes a JSON object into the record, keeping key order.
func (r *Record) UnmarshalJSON(b []byte) error {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	dec := jsontext.NewDecoder(strings.NewReader(string(b)), jsontext.AllowDuplicateNames(true))
	if dec.PeekKind() != '{' {
		return fmt.Errorf("record must be a JSON object")
	}
	if _, err := dec.ReadToken(); err != nil {
		return err
	}
	for dec.PeekKind() != '}' {
		name, err := dec.ReadToken()
		if err != nil {
			return err
		}
		// The token is only valid until the next decoder call.
		key := name.String()
		value, err := dec.ReadValue()
		if err != nil {
			return err
		}
		scalar, err := DecodeScalar(value)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		r.Set(key, scalar)
	}
	_, err := dec.ReadToken()
	return err
}
