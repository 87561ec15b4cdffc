package db

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// DistanceMetric used by the vector field of an FT index.
type DistanceMetric string

// DistanceCosine is cosine distance.
const DistanceCosine DistanceMetric = "COSINE"

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is a tag field.
	IndexFieldTag
	// IndexFieldVector is a FLOAT32 HNSW vector field.
	IndexFieldVector
)

// VectorOptions configures a vector field. Zero M or EFConstruct keeps the server default.
type VectorOptions struct {
	Dim         int
	Distance    DistanceMetric
	M           int
	EFConstruct int
}

// IndexField describes a single field in a hash-backed FT index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	Sortable     bool   // NUMERIC
	TagSeparator string // TAG, single character; empty keeps ","

	Vector VectorOptions
}

// IndexDefinition is a complete FT index over hashes, used by FT.CREATE.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field name is required at index %d", i)
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field name: %s", f.Name)
		}
		seen[f.Name] = true

		switch f.Type {
		case IndexFieldTag:
			if f.TagSeparator != "" && utf8.RuneCountInString(f.TagSeparator) != 1 {
				return fmt.Errorf("tag %s: separator must be a single character", f.Name)
			}
		case IndexFieldVector:
			if f.Vector.Dim <= 0 {
				return fmt.Errorf("vector %s: positive DIM is required", f.Name)
			}
		}
	}
	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
