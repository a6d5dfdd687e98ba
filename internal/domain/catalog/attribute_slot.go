package catalog

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// SlotKind discriminates the value slot carried by a ProductAttributeValue.
type SlotKind int

const (
	SlotSelect SlotKind = iota
	SlotBool
	SlotNumber
	SlotText
)

// ValueSlot is the tagged union written onto a ProductAttributeValue.
// Exactly one variant is meaningful, chosen by the owning attribute's type
// at write time.
type ValueSlot struct {
	kind     SlotKind
	valueRef uuid.UUID
	boolVal  bool
	numVal   float64
	textVal  string
}

// SelectSlot references a dictionary entry of a select attribute.
func SelectSlot(attributeValueID uuid.UUID) ValueSlot {
	return ValueSlot{kind: SlotSelect, valueRef: attributeValueID}
}

// BoolSlot carries a boolean payload.
func BoolSlot(v bool) ValueSlot {
	return ValueSlot{kind: SlotBool, boolVal: v}
}

// NumberSlot carries a numeric payload.
func NumberSlot(v float64) ValueSlot {
	return ValueSlot{kind: SlotNumber, numVal: v}
}

// TextSlot carries a raw text payload. It is also the fallback for number
// attributes whose raw value does not parse as numeric.
func TextSlot(v string) ValueSlot {
	return ValueSlot{kind: SlotText, textVal: v}
}

// Kind returns the populated variant.
func (s ValueSlot) Kind() SlotKind {
	return s.kind
}

// ProductAttributeValue joins a product to an attribute and carries exactly
// one typed payload. The four nullable columns flatten the ValueSlot union
// for persistence; only the column matching the attribute's type is set.
type ProductAttributeValue struct {
	shared.BaseEntity
	ProductID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	AttributeID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	AttributeValueID *uuid.UUID `gorm:"type:uuid"`
	BoolValue        *bool
	NumberValue      *float64
	TextValue        *string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProductAttributeValue) TableName() string {
	return "product_attribute_values"
}

// NewProductAttributeValue creates the join row, populating the single
// column that corresponds to the slot's variant.
func NewProductAttributeValue(productID, attributeID uuid.UUID, slot ValueSlot) *ProductAttributeValue {
	pav := &ProductAttributeValue{
		BaseEntity:  shared.NewBaseEntity(),
		ProductID:   productID,
		AttributeID: attributeID,
	}
	switch slot.kind {
	case SlotSelect:
		ref := slot.valueRef
		pav.AttributeValueID = &ref
	case SlotBool:
		v := slot.boolVal
		pav.BoolValue = &v
	case SlotNumber:
		v := slot.numVal
		pav.NumberValue = &v
	case SlotText:
		v := slot.textVal
		pav.TextValue = &v
	}
	return pav
}

// Slot reconstructs the tagged union from the persisted columns.
func (pav *ProductAttributeValue) Slot() ValueSlot {
	switch {
	case pav.AttributeValueID != nil:
		return SelectSlot(*pav.AttributeValueID)
	case pav.BoolValue != nil:
		return BoolSlot(*pav.BoolValue)
	case pav.NumberValue != nil:
		return NumberSlot(*pav.NumberValue)
	case pav.TextValue != nil:
		return TextSlot(*pav.TextValue)
	}
	return TextSlot("")
}
