/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package constraints

// DataKind is the declared value kind of a constrained attribute.
type DataKind uint8

const (
	DataKind_null DataKind = iota

	DataKind_String
	DataKind_Int
	DataKind_Float
	DataKind_Bool

	DataKind_count
)

func (k DataKind) String() string {
	switch k {
	case DataKind_String:
		return "string"
	case DataKind_Int:
		return "int"
	case DataKind_Float:
		return "float"
	case DataKind_Bool:
		return "bool"
	}
	return "DataKind(null)"
}

// Cardinality tells whether an attribute holds a single value or an
// ordered array of values of the declared kind.
type Cardinality uint8

const (
	Cardinality_Single Cardinality = iota
	Cardinality_Array
)

func (c Cardinality) String() string {
	if c == Cardinality_Array {
		return "array"
	}
	return "single"
}

// RuleKind names the refinement rule a value violated. Used in
// diagnostics only.
type RuleKind uint8

const (
	RuleKind_null RuleKind = iota

	RuleKind_Kind
	RuleKind_Cardinality
	RuleKind_Enum
	RuleKind_Pattern
	RuleKind_Range

	RuleKind_count
)

func (r RuleKind) String() string {
	switch r {
	case RuleKind_Kind:
		return "kind"
	case RuleKind_Cardinality:
		return "cardinality"
	case RuleKind_Enum:
		return "enum"
	case RuleKind_Pattern:
		return "pattern"
	case RuleKind_Range:
		return "range"
	}
	return "RuleKind(null)"
}
