package engine

import (
	"maps"
	"slices"
)

// ToMap converts a slice to a map using a key function.
// Example: ToMap(migrations, func(m Migration) string { return m.Stamp })
func ToMap[T any, K comparable](items []T, key func(T) K) map[K]T {
	m := make(map[K]T, len(items))
	for _, item := range items {
		m[key(item)] = item
	}
	return m
}

// ToSet converts a slice to a membership set.
// Example: ToSet(delta.Fields.Remove)
func ToSet[T comparable](items []T) map[T]bool {
	m := make(map[T]bool, len(items))
	for _, item := range items {
		m[item] = true
	}
	return m
}

// SortedKeys returns the keys of a set in ascending order.
func SortedKeys(m map[string]bool) []string {
	return slices.Sorted(maps.Keys(m))
}
