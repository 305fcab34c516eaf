package model

type RoomType string

const (
	RoomLab          RoomType = "Lab"
	RoomBlackBox     RoomType = "Black Box"
	RoomDanceStudio  RoomType = "Dance Studio"
	RoomSeminar      RoomType = "Seminar Room"
	RoomStandard     RoomType = "Standard Classroom"
	RoomLargeLecture RoomType = "Large Lecture Hall"
)

// RoomTypes lists every room type the slot inventory knows about.
var RoomTypes = []RoomType{RoomLab, RoomBlackBox, RoomDanceStudio, RoomSeminar, RoomStandard, RoomLargeLecture}

// IsKnown reports whether t is one of RoomTypes.
func (t RoomType) IsKnown() bool {
	for _, k := range RoomTypes {
		if k == t {
			return true
		}
	}
	return false
}

type Room struct {
	ID       string   `csv:"room_id" validate:"required"`
	Type     RoomType `csv:"room_type" validate:"required,roomtype"`
	Building string   `csv:"building" validate:"required"`
}
