package catalog

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// AttributeType classifies how an attribute's values are stored.
type AttributeType string

const (
	// AttributeTypeSelect is a dictionary-backed attribute: values are rows
	// in the attribute value dictionary and products reference them.
	AttributeTypeSelect AttributeType = "select"
	AttributeTypeBool   AttributeType = "boolean"
	AttributeTypeNumber AttributeType = "number"
	AttributeTypeString AttributeType = "string"
)

// IsValid checks if the attribute type is a known one
func (t AttributeType) IsValid() bool {
	switch t {
	case AttributeTypeSelect, AttributeTypeBool, AttributeTypeNumber, AttributeTypeString:
		return true
	}
	return false
}

// Attribute is a named product characteristic. The type is fixed when the
// attribute is first created (by sampling the first observed value) and is
// never re-evaluated on subsequent imports, even if later values look like
// a different type. select/boolean types are only ever provisioned by
// administrators; import reuses them but never assigns them.
type Attribute struct {
	shared.BaseEntity
	Name string        `gorm:"type:varchar(255);not null;uniqueIndex"`
	Slug string        `gorm:"type:varchar(255);not null;uniqueIndex"`
	Type AttributeType `gorm:"type:varchar(16);not null"`
}

// TableName returns the table name for GORM
func (Attribute) TableName() string {
	return "attributes"
}

// NewAttribute creates an attribute with its type classified from the first
// observed sample value.
func NewAttribute(name, slug string, sampleValue string) *Attribute {
	return &Attribute{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Slug:       slug,
		Type:       ClassifyValue(sampleValue),
	}
}

// ClassifyValue decides the type for a newly created attribute from a single
// sample value: numeric-looking strings become number, everything else
// string. select and boolean are never auto-assigned by import.
func ClassifyValue(sample string) AttributeType {
	if _, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(sample), ",", "."), 64); err == nil {
		return AttributeTypeNumber
	}
	return AttributeTypeString
}

// truthyValues is the fixed set of strings mapped to true for boolean
// attributes, matched case-insensitively.
var truthyValues = map[string]struct{}{
	"да":   {},
	"yes":  {},
	"true": {},
	"1":    {},
	"on":   {},
}

// ParseBoolValue maps a raw feed value onto a boolean attribute slot.
func ParseBoolValue(raw string) bool {
	_, ok := truthyValues[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// ParseNumberValue parses a raw feed value as a number, tolerating a comma
// decimal separator. The second return reports whether parsing succeeded.
func ParseNumberValue(raw string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AttributeValue is a dictionary entry for a select attribute, unique per
// (attribute_id, value) and ordered by insertion via SortOrder.
type AttributeValue struct {
	shared.BaseEntity
	AttributeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_attr_value,priority:1"`
	Value       string    `gorm:"type:varchar(500);not null;uniqueIndex:idx_attr_value,priority:2"`
	SortOrder   int       `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (AttributeValue) TableName() string {
	return "attribute_values"
}

// NewAttributeValue creates a dictionary entry for a select attribute.
func NewAttributeValue(attributeID uuid.UUID, value string, sortOrder int) *AttributeValue {
	return &AttributeValue{
		BaseEntity:  shared.NewBaseEntity(),
		AttributeID: attributeID,
		Value:       value,
		SortOrder:   sortOrder,
	}
}
