package scheduler

import (
	"slices"

	"github.com/rhyrak/go-registrar/pkg/model"
)

type TemplateKind string

const (
	Daytime  TemplateKind = "daytime"
	LabBlock TemplateKind = "lab-block"
	Evening  TemplateKind = "evening"
)

// Template is a standard meeting time. Lab blocks are offered in Lab rooms
// only; daytime and evening templates in every other room.
type Template struct {
	Kind  TemplateKind
	Days  model.DayPattern
	Start model.Clock
	End   model.Clock
}

func (t Template) appliesTo(rt model.RoomType) bool {
	if t.Kind == LabBlock {
		return rt == model.RoomLab
	}
	return rt != model.RoomLab
}

func tpl(kind TemplateKind, days, start, end string) Template {
	return Template{Kind: kind, Days: model.MustDayPattern(days), Start: model.MustClock(start), End: model.MustClock(end)}
}

// DefaultTemplates is the registrar's standard grid. No two templates that
// apply to the same room overlap, so every slot of a room is independent.
func DefaultTemplates() []Template {
	return []Template{
		tpl(Daytime, "MWF", "08:00", "08:50"),
		tpl(Daytime, "MWF", "09:00", "09:50"),
		tpl(Daytime, "MWF", "10:00", "10:50"),
		tpl(Daytime, "MWF", "11:00", "11:50"),
		tpl(Daytime, "MWF", "12:00", "12:50"),
		tpl(Daytime, "MWF", "13:00", "13:50"),
		tpl(Daytime, "MWF", "14:00", "14:50"),
		tpl(Daytime, "MWF", "15:00", "15:50"),
		tpl(Daytime, "TR", "08:00", "09:15"),
		tpl(Daytime, "TR", "09:30", "10:45"),
		tpl(Daytime, "TR", "11:00", "12:15"),
		tpl(Daytime, "TR", "12:30", "13:45"),
		tpl(Daytime, "TR", "14:00", "15:15"),
		tpl(Daytime, "TR", "15:30", "16:45"),
		tpl(LabBlock, "M", "09:00", "11:30"),
		tpl(LabBlock, "T", "09:00", "11:30"),
		tpl(LabBlock, "W", "09:00", "11:30"),
		tpl(LabBlock, "R", "09:00", "11:30"),
		tpl(LabBlock, "F", "09:00", "11:30"),
		tpl(LabBlock, "M", "13:00", "15:30"),
		tpl(LabBlock, "T", "13:00", "15:30"),
		tpl(LabBlock, "W", "13:00", "15:30"),
		tpl(LabBlock, "R", "13:00", "15:30"),
		tpl(LabBlock, "F", "13:00", "15:30"),
		tpl(Evening, "MW", "18:00", "19:15"),
		tpl(Evening, "TR", "18:00", "19:15"),
	}
}

// Inventory is the pool of still-available slots, kept in generation order
// (rooms in catalog order, templates in template order) so seeded draws are
// reproducible.
type Inventory struct {
	slots []model.Slot
}

// BuildInventory crosses every room with every template that applies to it.
func BuildInventory(rooms []*model.Room, templates []Template) *Inventory {
	inv := &Inventory{}
	for _, r := range rooms {
		for _, t := range templates {
			if !t.appliesTo(r.Type) {
				continue
			}
			inv.slots = append(inv.slots, model.Slot{
				RoomID:   r.ID,
				RoomType: r.Type,
				Building: r.Building,
				Days:     t.Days,
				Start:    t.Start,
				End:      t.End,
			})
		}
	}
	return inv
}

// NewInventory wraps an explicit slot list.
func NewInventory(slots []model.Slot) *Inventory {
	return &Inventory{slots: slices.Clone(slots)}
}

func (inv *Inventory) Len() int {
	return len(inv.slots)
}

// Available returns a copy of the remaining slots.
func (inv *Inventory) Available() []model.Slot {
	return slices.Clone(inv.slots)
}

// Eligible returns the positions of the available slots whose room type is in types.
func (inv *Inventory) Eligible(types []model.RoomType) []int {
	var idx []int
	for i, s := range inv.slots {
		if slices.Contains(types, s.RoomType) {
			idx = append(idx, i)
		}
	}
	return idx
}

// Take removes the slot at position i and returns it. Any other slot in the
// same room that would overlap it is retired as well.
func (inv *Inventory) Take(i int) model.Slot {
	taken := inv.slots[i]
	inv.slots = slices.DeleteFunc(inv.slots, func(s model.Slot) bool {
		return s.Overlaps(taken)
	})
	return taken
}
