package vendors

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	domvendor "github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

// Hash field names beyond the indexed filter fields.
const (
	fieldID          = "id"
	fieldName        = "name"
	fieldPriceMax    = "price_max"
	fieldDescription = "description"
	fieldVector      = "__vector"
)

// amenitySeparator joins the amenity tag list; it matches the index TAG SEPARATOR.
const amenitySeparator = ","

// recordFields lists the hash fields returned by scans, vector included.
var recordFields = []string{
	domvendor.FieldCategory, fieldID, fieldName,
	domvendor.FieldPrice, fieldPriceMax, domvendor.FieldCapacity,
	domvendor.FieldLocation, domvendor.FieldAmenities, fieldDescription,
	fieldVector,
}

// buildHashFields converts a vendor record into a flat map[string]string for HSET.
// The vector field is written only when the record carries an embedding.
func buildHashFields(r *domvendor.Record) map[string]string {
	m := map[string]string{
		domvendor.FieldCategory:  r.Category(),
		fieldID:                  r.ID(),
		fieldName:                r.Name(),
		domvendor.FieldPrice:     formatFloat(r.Price()),
		fieldPriceMax:            formatFloat(r.PriceMax()),
		domvendor.FieldCapacity:  strconv.Itoa(r.Capacity()),
		domvendor.FieldLocation:  r.Location(),
		domvendor.FieldAmenities: strings.Join(r.Amenities(), amenitySeparator),
		fieldDescription:         r.Description(),
	}
	if r.HasEmbedding() {
		m[fieldVector] = vectorToBytes(r.Embedding())
	}
	return m
}

// parseHashFields converts a flat hash map back into a vendor record.
// Malformed numerics hydrate as zero; the store is the only writer.
func parseHashFields(m map[string]string) domvendor.Record {
	f := domvendor.Fields{
		Category:    m[domvendor.FieldCategory],
		ID:          m[fieldID],
		Name:        m[fieldName],
		Location:    m[domvendor.FieldLocation],
		Description: m[fieldDescription],
	}
	f.Price, _ = strconv.ParseFloat(m[domvendor.FieldPrice], 64)
	f.PriceMax, _ = strconv.ParseFloat(m[fieldPriceMax], 64)
	f.Capacity, _ = strconv.Atoi(m[domvendor.FieldCapacity])
	if a := m[domvendor.FieldAmenities]; a != "" {
		f.Amenities = strings.Split(a, amenitySeparator)
	}

	var embedding []float32
	if raw, ok := m[fieldVector]; ok {
		embedding = bytesToVector(raw)
	}
	return domvendor.Reconstruct(f, embedding)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32. Malformed input yields nil.
func bytesToVector(s string) []float32 {
	if len(s) == 0 || len(s)%4 != 0 {
		return nil
	}
	b := []byte(s)
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
