package filter

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/voltaic/catalog/app/codec"
)

// Query parameters with a fixed meaning; every other parameter is read as an
// attribute slug.
const (
	ParamCategory     = "category_id"
	ParamManufacturer = "manufacturer"
	ParamPrice        = "price"
	ParamLimit        = "limit"
	ParamPage         = "page"
)

var reserved = map[string]struct{}{
	ParamCategory:     {},
	ParamManufacturer: {},
	ParamPrice:        {},
	ParamLimit:        {},
	ParamPage:         {},
}

// Criteria is the raw filter input of a product listing.
type Criteria struct {
	CategoryID      *uint
	ManufacturerIDs []uint
	PriceMin        *float64
	PriceMax        *float64
	// Attributes maps attribute slugs to their unparsed filter text.
	Attributes map[string]string
}

// ParseCriteria reads criteria from query values. Malformed core fields are
// ignored.
func ParseCriteria(values url.Values) Criteria {
	var c Criteria

	if raw := strings.TrimSpace(values.Get(ParamCategory)); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
			v := uint(id)
			c.CategoryID = &v
		}
	}

	if raw := values.Get(ParamManufacturer); raw != "" {
		c.ManufacturerIDs = codec.ParseOptionIDs(raw)
	}

	if raw := strings.TrimSpace(values.Get(ParamPrice)); raw != "" {
		if strings.Contains(raw, ":") {
			if r, ok := codec.ParseRange(raw); ok {
				c.PriceMin, c.PriceMax = r.Min, r.Max
			}
		} else if v, ok := codec.ParseNumber(raw); ok {
			c.PriceMin = &v
		}
	}

	for key, vals := range values {
		if _, ok := reserved[key]; ok {
			continue
		}
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		if c.Attributes == nil {
			c.Attributes = make(map[string]string)
		}
		c.Attributes[key] = vals[0]
	}
	return c
}

// Slugs returns the attribute slugs of c in sorted order.
func (c Criteria) Slugs() []string {
	slugs := make([]string, 0, len(c.Attributes))
	for slug := range c.Attributes {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}
