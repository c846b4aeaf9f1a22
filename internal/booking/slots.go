package booking

import (
	"canchapp/internal/common/errors"
	"canchapp/internal/models"
)

// ClosingTime is the end boundary of the grid. It is never a start slot.
const ClosingTime = "23:00"

// SlotTimes is the hourly grid, 09:00 through the closing boundary.
var SlotTimes = []string{
	"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00",
	"16:00", "17:00", "18:00", "19:00", "20:00", "21:00", "22:00",
	ClosingTime,
}

// Rejection messages shown on the slot grid.
const (
	MsgSlotNotAvailable = "this hour is not available"
	MsgMinimumHour      = "the 1-hour minimum cannot be completed at this hour"
	MsgPastClosing      = "range exceeds closing time (23:00)"
	MsgOccupiedInRange  = "range includes occupied slots"
)

// SlotView is one bookable start slot as shown to the user.
type SlotView struct {
	Time     string            `json:"time"`
	Status   models.SlotStatus `json:"status"`
	Selected bool              `json:"selected"`
}

// Selection is a contiguous block [Start, End). The zero value is empty.
type Selection struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

func (s Selection) Empty() bool {
	return s.Start == "" || s.End == ""
}

// Hours is the number of whole hours in the block.
func (s Selection) Hours() int {
	if s.Empty() {
		return 0
	}
	n := slotIndex(s.End) - slotIndex(s.Start)
	if n < 0 {
		return 0
	}
	return n
}

// Contains reports whether slot starts inside the block.
func (s Selection) Contains(slot string) bool {
	if s.Empty() {
		return false
	}
	i := slotIndex(slot)
	return i >= 0 && i >= slotIndex(s.Start) && i < slotIndex(s.End)
}

func slotIndex(slot string) int {
	for i, s := range SlotTimes {
		if s == slot {
			return i
		}
	}
	return -1
}

// NextSlot returns the slot after slot, if any.
func NextSlot(slot string) (string, bool) {
	i := slotIndex(slot)
	if i < 0 || i+1 >= len(SlotTimes) {
		return "", false
	}
	return SlotTimes[i+1], true
}

func occupied(av models.Availability, slot string) bool {
	return av.Status(slot) == models.SlotOccupied
}

// Click applies one click on slot to the current selection and returns the
// new selection. A rejection returns a SLOT_SELECTION_REJECTED error along
// with the selection that remains (cleared or unchanged, depending on the
// rule that fired).
func Click(av models.Availability, cur Selection, slot string) (Selection, error) {
	clicked := slotIndex(slot)
	next, hasNext := NextSlot(slot)

	if clicked < 0 || occupied(av, slot) || !hasNext {
		return Selection{}, errors.NewSlotSelectionError(slot, MsgSlotNotAvailable)
	}

	if slot == cur.Start {
		return Selection{}, nil
	}

	if cur.Empty() {
		if occupied(av, next) {
			return cur, errors.NewSlotSelectionError(slot, MsgMinimumHour)
		}
		return Selection{Start: slot, End: next}, nil
	}

	lo, hi := slotIndex(cur.Start), clicked
	if hi < lo {
		lo, hi = hi, lo
	}
	if hi+1 >= len(SlotTimes) {
		return cur, errors.NewSlotSelectionError(slot, MsgPastClosing)
	}
	for i := lo; i <= hi; i++ {
		if occupied(av, SlotTimes[i]) {
			return Selection{}, errors.NewSlotSelectionError(slot, MsgOccupiedInRange)
		}
	}
	return Selection{Start: SlotTimes[lo], End: SlotTimes[hi+1]}, nil
}

// PickHour selects exactly one hour starting at slot. Used when moving an
// existing reservation, which keeps its length and price.
func PickHour(av models.Availability, slot string) (Selection, error) {
	next, hasNext := NextSlot(slot)
	if slotIndex(slot) < 0 || occupied(av, slot) || !hasNext {
		return Selection{}, errors.NewSlotSelectionError(slot, MsgSlotNotAvailable)
	}
	return Selection{Start: slot, End: next}, nil
}

// Views renders the start slots with their status and selection flag.
func Views(av models.Availability, sel Selection) []SlotView {
	out := make([]SlotView, 0, len(SlotTimes)-1)
	for _, t := range SlotTimes[:len(SlotTimes)-1] {
		out = append(out, SlotView{Time: t, Status: av.Status(t), Selected: sel.Contains(t)})
	}
	return out
}

// FreeSlotCount is the number of start slots minus the occupied ones.
func FreeSlotCount(av models.Availability) int {
	n := len(SlotTimes) - 1
	for _, t := range SlotTimes[:len(SlotTimes)-1] {
		if occupied(av, t) {
			n--
		}
	}
	return n
}
