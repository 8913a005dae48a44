package ebloc

import (
	"slices"
	"strconv"
)

// RawMap is a loosely typed JSON object as returned by a data endpoint:
// a mapping of small integer-like string indices to records of string
// scalar fields, decoded no further than plain JSON. Lookups are total;
// missing keys read as empty.
type RawMap map[string]any

// Section returns the nested record under `key`, nil-safe.
func (m RawMap) Section(key string) RawMap {
	sub, _ := m[key].(map[string]any)
	return RawMap(sub)
}

// Str reads a scalar field out of a nested section as a string,
// returning "" when the section or field is absent.
func (m RawMap) Str(section, field string) string {
	switch v := m.Section(section)[field].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// Keys returns the section keys in document order (numeric ascending,
// matching how the portal indexes its records).
func (m RawMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareIndexKeys)
	return keys
}
