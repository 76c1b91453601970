package codec

import (
	"strings"

	"github.com/voltaic/catalog/models"
)

// Criterion is a parsed attribute filter: one of Range, Equals or OneOf.
type Criterion interface {
	isCriterion()
}

// Range is an inclusive numeric interval; a nil bound is unbounded. At least
// one bound is set.
type Range struct {
	Min *float64
	Max *float64
}

// Equals matches values equal to Value.
type Equals struct {
	Value Value
}

// OneOf matches List values referencing any of Options.
type OneOf struct {
	Options []uint
}

func (Range) isCriterion()  {}
func (Equals) isCriterion() {}
func (OneOf) isCriterion()  {}

// ParseFilter turns the filter text given for an attribute of type t into a
// criterion. Malformed input never fails: ok is false when nothing usable is
// left, meaning no predicate applies.
func ParseFilter(t models.AttributeType, text string) (c Criterion, ok bool) {
	switch t {
	case models.AttributeTypeInteger, models.AttributeTypeDecimal:
		if strings.Contains(text, ":") {
			r, ok := ParseRange(text)
			if !ok {
				return nil, false
			}
			return r, true
		}
		v, ok := ParseNumber(text)
		if !ok {
			return nil, false
		}
		return Equals{Value: Numeric(v)}, true
	case models.AttributeTypeBoolean:
		v, ok := ParseBoolean(text)
		if !ok {
			return nil, false
		}
		return Equals{Value: Numeric(v)}, true
	case models.AttributeTypeString:
		if text == "" {
			return nil, false
		}
		return Equals{Value: Text(text)}, true
	case models.AttributeTypeList:
		ids := ParseOptionIDs(text)
		if len(ids) == 0 {
			return nil, false
		}
		return OneOf{Options: ids}, true
	}
	return nil, false
}
