package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexBool is a boolean that tolerates the encodings the signal store
// actually contains: native booleans, 0/1 integers, and the strings
// "0"/"1"/"true"/"false". Everything downstream of the ingestion boundary
// only ever sees a plain bool.
type FlexBool bool

// Bool returns the normalized value.
func (f FlexBool) Bool() bool { return bool(f) }

// Scan implements sql.Scanner.
func (f *FlexBool) Scan(src interface{}) error {
	v, err := normalizeBool(src)
	if err != nil {
		return err
	}
	*f = FlexBool(v)
	return nil
}

// Value implements driver.Valuer, storing the canonical 0/1 form.
func (f FlexBool) Value() (driver.Value, error) {
	if f {
		return int64(1), nil
	}
	return int64(0), nil
}

// UnmarshalJSON accepts true/false, 0/1 and their string forms.
func (f *FlexBool) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(bytes.TrimSpace(data), &raw); err != nil {
		return err
	}
	v, err := normalizeBool(raw)
	if err != nil {
		return err
	}
	*f = FlexBool(v)
	return nil
}

// MarshalJSON emits a native boolean.
func (f FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

func normalizeBool(src interface{}) (bool, error) {
	switch v := src.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case []byte:
		return parseBoolString(string(v))
	case string:
		return parseBoolString(v)
	default:
		return false, fmt.Errorf("unsupported boolean encoding %T", src)
	}
}

func parseBoolString(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return false, nil
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b, nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return n != 0, nil
	}
	return false, fmt.Errorf("unsupported boolean encoding %q", s)
}

// JSONText holds a JSON sub-document that may arrive as raw encoded text
// or already-parsed bytes. Decoding happens on demand; a malformed
// document is treated as absent rather than surfaced as an error.
type JSONText []byte

// Scan implements sql.Scanner.
func (j *JSONText) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		buf := make([]byte, len(v))
		copy(buf, v)
		*j = buf
	case string:
		*j = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (j JSONText) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

// Present reports whether the document exists and parses.
func (j JSONText) Present() bool {
	if len(bytes.TrimSpace(j)) == 0 {
		return false
	}
	return json.Valid(j)
}

// Decode unmarshals the document into v. It reports false when the
// document is absent or malformed; parse failure never propagates.
func (j JSONText) Decode(v interface{}) bool {
	if !j.Present() {
		return false
	}
	return json.Unmarshal(j, v) == nil
}

// Map decodes the document as a key/value object, nil when absent or
// malformed.
func (j JSONText) Map() map[string]interface{} {
	var m map[string]interface{}
	if !j.Decode(&m) {
		return nil
	}
	return m
}

// List decodes the document as an array, nil when absent or malformed.
func (j JSONText) List() []interface{} {
	var l []interface{}
	if !j.Decode(&l) {
		return nil
	}
	return l
}
