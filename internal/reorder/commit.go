package reorder

import "slices"

// MoveBlock moves the items whose ids are listed in moving to target as one
// contiguous block, preserving their relative order.
//
// target is an insertion index into items as they were before the move. It
// is corrected for the removed block by subtracting the number of moving
// items at positions up to and including target, then clamped to the
// remaining list. When the block already sits at the corrected position the
// input slice itself is returned with changed=false, so observers can skip
// redundant work.
func MoveBlock[T any](items []T, idOf func(T) string, moving []string, target int) ([]T, bool) {
	if len(items) == 0 || len(moving) == 0 {
		return items, false
	}
	set := make(map[string]struct{}, len(moving))
	for _, id := range moving {
		set[id] = struct{}{}
	}

	block := make([]T, 0, len(moving))
	remaining := make([]T, 0, len(items))
	before := 0
	for i, it := range items {
		if _, ok := set[idOf(it)]; ok {
			block = append(block, it)
			if i <= target {
				before++
			}
			continue
		}
		remaining = append(remaining, it)
	}
	if len(block) == 0 {
		return items, false
	}

	pos := min(max(target-before, 0), len(remaining))
	out := make([]T, 0, len(items))
	out = append(out, remaining[:pos]...)
	out = append(out, block...)
	out = append(out, remaining[pos:]...)

	if slices.EqualFunc(out, items, func(a, b T) bool { return idOf(a) == idOf(b) }) {
		return items, false
	}
	return out, true
}

// MoveIDs is MoveBlock over a plain id list.
func MoveIDs(order, moving []string, target int) ([]string, bool) {
	return MoveBlock(order, func(s string) string { return s }, moving, target)
}

// MoveBlockBeside moves the items listed in moving, as one block in their
// current relative order, directly before the item with id anchor, or
// directly after it when before is false. It is used to replay a move made
// on a filtered view onto the full list. The input is returned unchanged
// when anchor is missing, is itself moving, or the order would not change.
func MoveBlockBeside[T any](items []T, idOf func(T) string, moving []string, anchor string, before bool) ([]T, bool) {
	if len(moving) == 0 || slices.Contains(moving, anchor) {
		return items, false
	}
	set := make(map[string]struct{}, len(moving))
	for _, id := range moving {
		set[id] = struct{}{}
	}
	block := make([]T, 0, len(moving))
	remaining := make([]T, 0, len(items))
	pos := -1
	for _, it := range items {
		id := idOf(it)
		if _, ok := set[id]; ok {
			block = append(block, it)
			continue
		}
		if id == anchor {
			pos = len(remaining)
			if !before {
				pos++
			}
		}
		remaining = append(remaining, it)
	}
	if pos < 0 || len(block) == 0 {
		return items, false
	}
	out := make([]T, 0, len(items))
	out = append(out, remaining[:pos]...)
	out = append(out, block...)
	out = append(out, remaining[pos:]...)
	if slices.EqualFunc(out, items, func(a, b T) bool { return idOf(a) == idOf(b) }) {
		return items, false
	}
	return out, true
}
