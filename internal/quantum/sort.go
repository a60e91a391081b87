package quantum

import "sort"

// sortNewestFirst orders items by descending timestamp, keeping category order for ties
func sortNewestFirst[T any](items []T, unix func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		return unix(items[i]) > unix(items[j])
	})
}
