package model

import "strings"

type RoomCategory string

const (
	Classroom   RoomCategory = "classroom"
	SoftwareLab RoomCategory = "software_lab"
	HardwareLab RoomCategory = "hardware_lab"
	GenericLab  RoomCategory = "lab"
)

func (category RoomCategory) IsLab() bool {
	return category == SoftwareLab || category == HardwareLab || category == GenericLab
}

// ParseRoomCategory maps free-form category labels onto the known categories
func ParseRoomCategory(label string) RoomCategory {
	normalized := strings.ToLower(strings.TrimSpace(label))
	switch {
	case strings.Contains(normalized, "software"):
		return SoftwareLab
	case strings.Contains(normalized, "hardware"):
		return HardwareLab
	case strings.Contains(normalized, "lab"):
		return GenericLab
	}
	return Classroom
}

type RoomRecord struct {
	Id       string       `mapstructure:"id" validate:"required"`
	Capacity int          `mapstructure:"capacity" validate:"gte=0"`
	Category RoomCategory `mapstructure:"category"`
}
