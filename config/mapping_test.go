package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltaic/catalog/models"
)

func TestDefaultMapping(t *testing.T) {
	m, err := DefaultMapping()
	require.NoError(t, err)

	cols := m.Columns("battery")
	require.Len(t, cols, 1)
	assert.Equal(t, "capacity", cols[0].Column)
	assert.Equal(t, "capacity", cols[0].Slug)
	assert.Equal(t, models.AttributeTypeDecimal, cols[0].Type)
	assert.Equal(t, "kWh", cols[0].Unit)

	cols = m.Columns("solar-panel")
	require.Len(t, cols, 1)
	assert.Equal(t, "power-output", cols[0].Slug)
	assert.Equal(t, "W", cols[0].Unit)

	cols = m.Columns("connector")
	require.Len(t, cols, 1)
	assert.Equal(t, models.AttributeTypeList, cols[0].Type)
	assert.Nil(t, cols[0].Attribute().Unit)

	assert.Empty(t, m.Columns("unknown"))
}

func TestMapping_CategoryTitle(t *testing.T) {
	m, err := DefaultMapping()
	require.NoError(t, err)

	assert.Equal(t, "Batteries", m.CategoryTitle("battery"))
	assert.Equal(t, "Solar Panels", m.CategoryTitle("solar-panel"))
	assert.Equal(t, "Wind turbine", m.CategoryTitle("wind-turbine"))
	assert.Equal(t, "", m.CategoryTitle(""))
}

func TestMapping_ResolveCategory(t *testing.T) {
	m, err := DefaultMapping()
	require.NoError(t, err)

	testCases := []struct {
		name     string
		explicit string
		source   string
		want     string
		ok       bool
	}{
		{"explicit wins", "connector", "/data/batteries.csv", "connector", true},
		{"plural alias", "", "/data/batteries.csv", "battery", true},
		{"upper case file", "", "SOLAR_PANELS.csv", "solar-panel", true},
		{"xlsx extension", "", "connectors.xlsx", "connector", true},
		{"slug itself", "", "solar-panel.csv", "solar-panel", true},
		{"unknown file", "", "inventory.csv", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := m.ResolveCategory(tc.explicit, tc.source)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseMapping_Errors(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{
			name: "unknown type",
			yaml: "categories:\n  battery:\n    columns:\n      capacity:\n        slug: capacity\n        type: float\n",
		},
		{
			name: "missing slug",
			yaml: "categories:\n  battery:\n    columns:\n      capacity:\n        type: decimal\n",
		},
		{
			name: "alias clash",
			yaml: "categories:\n  battery:\n    aliases: [cells]\n  cell:\n    aliases: [cells]\n",
		},
		{
			name: "malformed yaml",
			yaml: "categories: [",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseMapping([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseMapping_TypeAliases(t *testing.T) {
	m, err := ParseMapping([]byte("categories:\n  pump:\n    columns:\n      stages:\n        slug: stages\n        type: INT\n      portable:\n        slug: portable\n        type: bool\n"))
	require.NoError(t, err)

	cols := m.Columns("pump")
	require.Len(t, cols, 2)
	assert.Equal(t, "portable", cols[0].Column)
	assert.Equal(t, models.AttributeTypeBoolean, cols[0].Type)
	assert.Equal(t, "portable", cols[0].Title)
	assert.Equal(t, models.AttributeTypeInteger, cols[1].Type)
	assert.Equal(t, "Pump", m.CategoryTitle("pump"))
}
