package scheduler

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"github.com/rhyrak/go-registrar/pkg/model"
)

// Assignment summarizes one pass of the room/time engine.
type Assignment struct {
	Scheduled   int
	Unscheduled int
	Exempt      int
	Shortfalls  []model.Shortfall
}

// AssignRooms gives every section that needs a room a slot from the
// inventory, largest sections first. The slot is drawn uniformly among the
// eligible ones; sections left without a slot are reported, not dropped.
func AssignRooms(sections []*model.Section, inv *Inventory, r *rand.Rand, log zerolog.Logger) *Assignment {
	log = log.With().Str("component", "scheduler").Logger()
	res := &Assignment{}

	var queue []*model.Section
	for _, s := range sections {
		if !s.NeedsRoom() {
			res.Exempt++
			continue
		}
		queue = append(queue, s)
	}
	// Stable so that equal capacities keep catalog order.
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Cap() > queue[j].Cap()
	})

	for _, s := range queue {
		types := EligibleRoomTypes(s)
		eligible := inv.Eligible(types)
		if len(eligible) == 0 {
			res.Unscheduled++
			res.Shortfalls = append(res.Shortfalls, model.Shortfall{
				Kind:    model.AllocationShortfall,
				Subject: s.ID,
				Detail:  fmt.Sprintf("no %v slot left for %s of %d", types, s.Component, s.Cap()),
			})
			log.Warn().
				Str("section", s.ID).
				Str("section_component", string(s.Component)).
				Int("capacity", s.Cap()).
				Msg("No eligible slot left, section left unscheduled")
			continue
		}
		slot := inv.Take(eligible[r.Intn(len(eligible))])
		s.Slot = &slot
		res.Scheduled++
		log.Debug().Str("section", s.ID).Str("slot", slot.String()).Msg("Section placed")
	}

	log.Info().
		Int("scheduled", res.Scheduled).
		Int("unscheduled", res.Unscheduled).
		Int("exempt", res.Exempt).
		Int("slots_left", inv.Len()).
		Msg("Room assignment finished")
	return res
}
