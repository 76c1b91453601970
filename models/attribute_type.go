package models

import "strings"

// AttributeType is the closed set of value kinds an attribute can hold.
// The numeric value is persisted in attributes.type_id and must never change.
//
//exhaustive:enforce
type AttributeType uint8

const (
	AttributeTypeInteger AttributeType = 1
	AttributeTypeDecimal AttributeType = 2
	AttributeTypeBoolean AttributeType = 3
	AttributeTypeString  AttributeType = 4
	AttributeTypeList    AttributeType = 5
)

// AttributeTypes lists every registered type in identifier order.
func AttributeTypes() []AttributeType {
	return []AttributeType{
		AttributeTypeInteger,
		AttributeTypeDecimal,
		AttributeTypeBoolean,
		AttributeTypeString,
		AttributeTypeList,
	}
}

// AttributeTypeFromID returns the type persisted under id.
// ok is false for identifiers outside the registry.
func AttributeTypeFromID(id int) (AttributeType, bool) {
	t := AttributeType(id)
	if id < 0 || id > 255 || !t.Valid() {
		return 0, false
	}
	return t, true
}

// ParseAttributeType looks a type up by slug, case-insensitively.
// "int" and "bool" are accepted as aliases.
func ParseAttributeType(s string) (AttributeType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int":
		return AttributeTypeInteger, true
	case "decimal":
		return AttributeTypeDecimal, true
	case "boolean", "bool":
		return AttributeTypeBoolean, true
	case "string":
		return AttributeTypeString, true
	case "list":
		return AttributeTypeList, true
	}
	return 0, false
}

func (t AttributeType) Valid() bool {
	return t.Slug() != ""
}

// ID is the persisted numeric identifier.
func (t AttributeType) ID() int {
	return int(t)
}

// Label is the display name, empty for unknown types.
func (t AttributeType) Label() string {
	switch t {
	case AttributeTypeInteger:
		return "Integer"
	case AttributeTypeDecimal:
		return "Decimal"
	case AttributeTypeBoolean:
		return "Boolean"
	case AttributeTypeString:
		return "String"
	case AttributeTypeList:
		return "List"
	}
	return ""
}

// Slug is the canonical lowercase name, empty for unknown types.
func (t AttributeType) Slug() string {
	switch t {
	case AttributeTypeInteger:
		return "integer"
	case AttributeTypeDecimal:
		return "decimal"
	case AttributeTypeBoolean:
		return "boolean"
	case AttributeTypeString:
		return "string"
	case AttributeTypeList:
		return "list"
	}
	return ""
}

func (t AttributeType) String() string {
	if s := t.Slug(); s != "" {
		return s
	}
	return "unknown"
}

// IsNumeric reports whether values of t are stored in the decimal column.
func (t AttributeType) IsNumeric() bool {
	return t == AttributeTypeInteger || t == AttributeTypeDecimal || t == AttributeTypeBoolean
}
