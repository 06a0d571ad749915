package provider

import "strings"

// Fully qualified generic name prefixes of the supported std collections.
const (
	vecPrefix     = "alloc::vec::Vec<"
	hashMapPrefix = "std::collections::hash::map::HashMap<"
	hashSetPrefix = "std::collections::hash::set::HashSet<"
)

// MatchesVec reports whether the display type name is a Vec instantiation.
// Matchers are pure prefix tests: malformed names simply do not match.
func MatchesVec(typeName string) bool {
	return strings.HasPrefix(typeName, vecPrefix)
}

// MatchesHashMap reports whether the display type name is a HashMap
// instantiation.
func MatchesHashMap(typeName string) bool {
	return strings.HasPrefix(typeName, hashMapPrefix)
}

// MatchesHashSet reports whether the display type name is a HashSet
// instantiation.
func MatchesHashSet(typeName string) bool {
	return strings.HasPrefix(typeName, hashSetPrefix)
}

// MatchesSlice reports whether the display type name is a shared or mutable
// slice reference.
func MatchesSlice(typeName string) bool {
	return strings.HasPrefix(typeName, "&[") || strings.HasPrefix(typeName, "&mut [")
}
