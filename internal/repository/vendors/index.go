package vendors

import (
	"github.com/kailas-cloud/vendorscout/internal/db"
	domvendor "github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

// HNSWConfig holds HNSW index parameters for the description vector field.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// buildIndex creates the vendor FT index: filterable tags and numerics plus the
// description vector. Location uses "|" as separator since names may contain commas.
func buildIndex(vectorDim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(indexName()).
		Prefix(keyPrefix()).
		Tag(domvendor.FieldCategory, "").
		Tag(domvendor.FieldLocation, "|").
		Tag(domvendor.FieldAmenities, amenitySeparator).
		SortableNumeric(domvendor.FieldPrice).
		Numeric(domvendor.FieldCapacity).
		Vector(fieldVector, db.VectorOptions{
			Dim:         vectorDim,
			Distance:    db.DistanceCosine,
			M:           hnsw.M,
			EFConstruct: hnsw.EFConstruct,
		}).
		Build()
}
