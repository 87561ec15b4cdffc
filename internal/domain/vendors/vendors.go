// Package vendors holds the vendor record aggregate owned by the vendor store.
package vendors

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxDescriptionSize is the maximum description size in bytes.
const MaxDescriptionSize = 16384

// Record is a vendor offering one service category (immutable value object).
type Record struct {
	category    string
	id          string
	name        string
	price       float64
	priceMax    float64
	capacity    int
	location    string
	amenities   []string
	description string
	embedding   []float32
}

// Fields is the mutable input for New.
type Fields struct {
	Category    string
	ID          string
	Name        string
	Price       float64
	PriceMax    float64
	Capacity    int
	Location    string
	Amenities   []string
	Description string
}

// New validates and creates a Record without an embedding.
// ID: ^[a-zA-Z0-9_-]+$, 1-128 chars. Price must be non-negative; PriceMax, when set,
// must not be below Price. Amenities are lower-cased and de-duplicated.
func New(f Fields) (Record, error) {
	category := strings.ToLower(strings.TrimSpace(f.Category))
	if category == "" {
		return Record{}, fmt.Errorf("vendor category is required")
	}
	if f.ID == "" {
		return Record{}, fmt.Errorf("vendor ID is required")
	}
	if len(f.ID) > 128 {
		return Record{}, fmt.Errorf("vendor ID too long (max 128)")
	}
	if !idRegex.MatchString(f.ID) {
		return Record{}, fmt.Errorf("vendor ID must be alphanumeric with underscores and hyphens")
	}
	if f.Price < 0 {
		return Record{}, fmt.Errorf("price must be non-negative, got %g", f.Price)
	}
	if f.PriceMax != 0 && f.PriceMax < f.Price {
		return Record{}, fmt.Errorf("price_max %g is below price %g", f.PriceMax, f.Price)
	}
	if f.Capacity < 0 {
		return Record{}, fmt.Errorf("capacity must be non-negative, got %d", f.Capacity)
	}
	if strings.TrimSpace(f.Description) == "" {
		return Record{}, fmt.Errorf("description is required")
	}
	if len(f.Description) > MaxDescriptionSize {
		return Record{}, fmt.Errorf("description too large (max %d bytes)", MaxDescriptionSize)
	}

	return Record{
		category:    category,
		id:          f.ID,
		name:        strings.TrimSpace(f.Name),
		price:       f.Price,
		priceMax:    f.PriceMax,
		capacity:    f.Capacity,
		location:    strings.TrimSpace(f.Location),
		amenities:   NormalizeAmenities(f.Amenities),
		description: f.Description,
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(f Fields, embedding []float32) Record {
	return Record{
		category:    f.Category,
		id:          f.ID,
		name:        f.Name,
		price:       f.Price,
		priceMax:    f.PriceMax,
		capacity:    f.Capacity,
		location:    f.Location,
		amenities:   f.Amenities,
		description: f.Description,
		embedding:   embedding,
	}
}

// WithEmbedding returns a copy of the record carrying the given description embedding.
func (r Record) WithEmbedding(embedding []float32) Record {
	r.embedding = embedding
	return r
}

// Category returns the service category (venue, caterer, ...).
func (r *Record) Category() string { return r.category }

// ID returns the vendor identifier, unique within a category.
func (r *Record) ID() string { return r.id }

// Name returns the display name.
func (r *Record) Name() string { return r.name }

// Price returns the quoted starting price used for budget filtering and scoring.
func (r *Record) Price() float64 { return r.price }

// PriceMax returns the upper end of the price range, or 0 when the vendor quotes a single price.
func (r *Record) PriceMax() float64 { return r.priceMax }

// Capacity returns the maximum number of guests the vendor serves.
func (r *Record) Capacity() int { return r.capacity }

// Location returns the vendor location.
func (r *Record) Location() string { return r.location }

// Amenities returns the amenity set.
func (r *Record) Amenities() []string { return slices.Clone(r.amenities) }

// HasAmenity reports whether the amenity set contains a (case-insensitive).
func (r *Record) HasAmenity(a string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	return slices.Contains(r.amenities, a)
}

// Description returns the free-text description.
func (r *Record) Description() string { return r.description }

// Embedding returns the precomputed description embedding, nil when the vendor is unembedded.
func (r *Record) Embedding() []float32 { return r.embedding }

// HasEmbedding reports whether the record carries a description embedding.
func (r *Record) HasEmbedding() bool { return len(r.embedding) > 0 }

// NormalizeAmenities lower-cases, trims, de-duplicates and sorts an amenity list.
func NormalizeAmenities(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		out = append(out, a)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Store field names shared by the hard-constraint expression and the vendor index.
const (
	FieldCategory  = "category"
	FieldPrice     = "price"
	FieldCapacity  = "capacity"
	FieldLocation  = "location"
	FieldAmenities = "amenities"
)
