// Package codec converts attribute values between their typed form, the text
// users and import files supply, and the three value columns of
// product_attribute_values.
package codec

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/voltaic/catalog/models"
)

var (
	ErrInvalidValue = errors.New("invalid attribute value")
	ErrUnknownType  = errors.New("unknown attribute type")
)

// Value is a typed attribute value. It is one of Numeric, Text or OptionRef.
type Value interface {
	isValue()
}

// Numeric holds Integer, Decimal and Boolean values; booleans are 1 or 0.
type Numeric float64

// Text holds String values.
type Text string

// OptionRef references an AttributeOption of a List attribute by id.
type OptionRef uint

func (Numeric) isValue()   {}
func (Text) isValue()      {}
func (OptionRef) isValue() {}

// Storage is the physical shape of a value: at most one field is set.
type Storage struct {
	OptionID *uint
	Text     *string
	Decimal  *float64
}

// Encode maps v onto its storage column.
func Encode(v Value) Storage {
	switch v := v.(type) {
	case Numeric:
		f := float64(v)
		return Storage{Decimal: &f}
	case Text:
		s := string(v)
		return Storage{Text: &s}
	case OptionRef:
		id := uint(v)
		return Storage{OptionID: &id}
	}
	return Storage{}
}

// Apply writes s into the value columns of pav, clearing the others.
func (s Storage) Apply(pav *models.ProductAttributeValue) {
	pav.AttributeOptionID = s.OptionID
	pav.ValueText = s.Text
	pav.ValueDecimal = s.Decimal
}

// Column names the value column used by attributes of type t.
func Column(t models.AttributeType) (string, error) {
	switch t {
	case models.AttributeTypeInteger, models.AttributeTypeDecimal, models.AttributeTypeBoolean:
		return "value_decimal", nil
	case models.AttributeTypeString:
		return "value_text", nil
	case models.AttributeTypeList:
		return "attribute_option_id", nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnknownType, t)
}

// Decode reads the value of pav as an attribute of type t. The column the
// type owns must be set.
func Decode(t models.AttributeType, pav models.ProductAttributeValue) (Value, error) {
	switch t {
	case models.AttributeTypeInteger, models.AttributeTypeDecimal, models.AttributeTypeBoolean:
		if pav.ValueDecimal == nil {
			return nil, fmt.Errorf("%w: %s value without decimal", ErrInvalidValue, t)
		}
		return Numeric(*pav.ValueDecimal), nil
	case models.AttributeTypeString:
		if pav.ValueText == nil {
			return nil, fmt.Errorf("%w: %s value without text", ErrInvalidValue, t)
		}
		return Text(*pav.ValueText), nil
	case models.AttributeTypeList:
		if pav.AttributeOptionID == nil {
			return nil, fmt.Errorf("%w: %s value without option", ErrInvalidValue, t)
		}
		return OptionRef(*pav.AttributeOptionID), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
}

// Format renders v for display. Boolean values render as true or false.
func Format(t models.AttributeType, v Value) string {
	switch v := v.(type) {
	case Numeric:
		if t == models.AttributeTypeBoolean {
			return strconv.FormatBool(v != 0)
		}
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	case Text:
		return string(v)
	case OptionRef:
		return strconv.FormatUint(uint64(v), 10)
	}
	return ""
}
