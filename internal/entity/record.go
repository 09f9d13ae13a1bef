package entity

import (
	"bytes"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Record keys referenced by code outside the mapping tables.
const (
	KeyFullName       = "full_name"
	KeyBiography      = "biography"
	KeyBioBy          = "bio_by"
	KeyPlot           = "Plot"
	KeyInscription    = "inscription"
	KeyFamilyParents  = "family_parents"
	KeyFamilySpouses  = "family_spouses"
	KeyFamilyChildren = "family_children"
)

// Field is one named scalar of a Record.
type Field struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

// Record is the flat memorial row. Keys keep their first insertion order,
// which becomes the column order of the written sheet.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{index: make(map[string]int)}
}

// Set stores value under key. Overwriting keeps the original position.
func (r *Record) Set(key string, value any) {
	if i, ok := r.index[key]; ok {
		r.fields[i].Value = value
		return
	}
	r.index[key] = len(r.fields)
	r.fields = append(r.fields, Field{Key: key, Value: value})
}

// Get returns the value stored under key, or nil.
func (r *Record) Get(key string) any {
	if i, ok := r.index[key]; ok {
		return r.fields[i].Value
	}
	return nil
}

// Has reports whether key was ever set.
func (r *Record) Has(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Keys returns the keys in insertion order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Fields returns a copy of the ordered fields.
func (r *Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.fields)
}

// Map returns the record as an unordered map.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		m[f.Key] = f.Value
	}
	return m
}

// Merge copies every field of other into r, in other's order.
func (r *Record) Merge(other *Record) {
	for _, f := range other.fields {
		r.Set(f.Key, f.Value)
	}
}

// MarshalJSON encodes the record as a JSON object preserving field order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf)
	if err := enc.WriteToken(jsontext.ObjectStart); err != nil {
		return nil, err
	}
	for _, f := range r.fields {
		if err := enc.WriteToken(jsontext.String(f.Key)); err != nil {
			return nil, err
		}
		if err := json.MarshalEncode(enc, f.Value); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteToken(jsontext.ObjectEnd); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
