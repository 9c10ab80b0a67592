/*
 * Copyright (c) 2024-present Metadef, Ltd.
 */

package metadata

const (
	// Used as delimiter between type and subtype in qualified type names
	TypeIDSeparator = "."

	// Used as delimiter between package namespace segments
	PkgSeparator = "::"

	// Used as delimiter between segments of a rendered hierarchical path
	PathArrow = " → "

	// Maximum identifier length, in runes
	MaxIdentLen = 255

	// Null (empty) name
	NullName = ""
)

// Conventional attribute names honored by the core.
const (
	// Nodes flagged abstract are exempt from required children
	// completeness checks.
	AttrIsAbstract = "isAbstract"
)

// Cache sizing defaults.
const (
	// Computed tier bound for registry level caches
	RegistryComputedSize = 1024

	// Computed tier bound for per node caches
	NodeComputedSize = 64

	// Byte budget of the rendered descriptions cache
	DescriptionsCacheSize = 1 << 20
)
