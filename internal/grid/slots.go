// Package grid assembles the fixed 48-slot daily emotion timeline.
package grid

import (
	"fmt"
	"strings"
)

// SlotsPerDay is the number of thirty-minute slots in a day grid.
const SlotsPerDay = 48

var slots = func() []string {
	out := make([]string, 0, SlotsPerDay)
	for hour := 0; hour < 24; hour++ {
		for _, minute := range []int{0, 30} {
			out = append(out, fmt.Sprintf("%02d-%02d", hour, minute))
		}
	}
	return out
}()

var slotIndex = func() map[string]int {
	out := make(map[string]int, len(slots))
	for i, slot := range slots {
		out[slot] = i
	}
	return out
}()

// Slots returns the canonical slot identifiers, "00-00" through "23-30", in
// chronological order.
func Slots() []string {
	return append([]string(nil), slots...)
}

func IsSlot(id string) bool {
	_, ok := slotIndex[id]
	return ok
}

// SlotIndex returns the position of id in the day, or -1.
func SlotIndex(id string) int {
	if i, ok := slotIndex[id]; ok {
		return i
	}
	return -1
}

// DisplayTime renders a slot id as "HH:MM".
func DisplayTime(id string) string {
	return strings.Replace(id, "-", ":", 1)
}
