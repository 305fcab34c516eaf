package scheduler

import (
	"github.com/rhyrak/go-registrar/pkg/model"
)

// Section size thresholds for lecture-style rooms.
const (
	LargeSectionThreshold = 40
	SmallSectionThreshold = 16
)

// EligibleRoomTypes returns the room types a section may be placed in.
func EligibleRoomTypes(s *model.Section) []model.RoomType {
	switch s.Component {
	case model.ComponentLab:
		return []model.RoomType{model.RoomLab}
	case model.ComponentStudio:
		return []model.RoomType{model.RoomBlackBox, model.RoomDanceStudio, model.RoomSeminar}
	}
	switch capacity := s.Cap(); {
	case capacity > LargeSectionThreshold:
		return []model.RoomType{model.RoomLargeLecture}
	case capacity > SmallSectionThreshold:
		return []model.RoomType{model.RoomStandard}
	default:
		return []model.RoomType{model.RoomSeminar}
	}
}

func contains(s []string, e string) bool {
	for _, a := range s {
		if a == e {
			return true
		}
	}
	return false
}
