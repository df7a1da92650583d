// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

// Package xmaps provides extended utility functions for working with maps,
// complementing the standard maps package.
package xmaps

import (
	"cmp"
	"maps"
	"slices"
)

// Contains reports whether key is present in m.
func Contains[Map ~map[K]V, K comparable, V any](m Map, key K) bool {
	_, ok := m[key]
	return ok
}

// SortedKeys returns m's keys in ascending order. Map iteration order is
// randomized, so every rendering that walks a map goes through here to stay
// deterministic.
func SortedKeys[Map ~map[K]V, K cmp.Ordered, V any](m Map) []K {
	return slices.Sorted(maps.Keys(m))
}
