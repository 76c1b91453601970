package codec

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/voltaic/catalog/models"
)

// OptionResolver returns the id of the option labelled label, creating it
// when needed.
type OptionResolver func(ctx context.Context, label string) (uint, error)

// ParseCell converts one import cell into the value stored for an attribute
// of type t. List cells are resolved to option ids through options.
func ParseCell(ctx context.Context, t models.AttributeType, raw string, options OptionResolver) (Value, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty cell", ErrInvalidValue)
	}

	switch t {
	case models.AttributeTypeInteger:
		v, ok := ParseNumber(raw)
		if !ok || v != math.Trunc(v) {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, raw)
		}
		return Numeric(v), nil
	case models.AttributeTypeDecimal:
		v, ok := ParseNumber(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, raw)
		}
		return Numeric(v), nil
	case models.AttributeTypeBoolean:
		v, ok := ParseBoolean(raw)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, raw)
		}
		return Numeric(v), nil
	case models.AttributeTypeString:
		return Text(raw), nil
	case models.AttributeTypeList:
		if options == nil {
			return nil, fmt.Errorf("%w: no option resolver for %q", ErrInvalidValue, raw)
		}
		id, err := options(ctx, raw)
		if err != nil {
			return nil, err
		}
		return OptionRef(id), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownType, t)
}
