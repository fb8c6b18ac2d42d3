package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

var ErrNoCourses = errors.New("input does not contain any course")

type RawRoom struct {
	Id       string `mapstructure:"id"`
	Capacity int    `mapstructure:"capacity"`
	Category string `mapstructure:"category"`
}

type RawModelInput struct {
	Courses []CourseRequirement `mapstructure:"courses"`
	Rooms   []RawRoom           `mapstructure:"rooms"`
}

type ModelInput struct {
	Courses  []CourseRequirement
	Rooms    []RoomRecord
	Warnings []string // Input defects that were skipped or defaulted
}

// Semesters returns the distinct semesters present in the input in ascending order
func (input ModelInput) Semesters() []int {
	semesters := lo.Uniq(lo.Map(input.Courses, func(course CourseRequirement, _ int) int { return course.Semester }))
	slices.Sort(semesters)
	return semesters
}

func (input ModelInput) SemesterCourses(semester int) []CourseRequirement {
	return lo.Filter(input.Courses, func(course CourseRequirement, _ int) bool { return course.Semester == semester })
}

func InputFromJson(file string, policy Policy) (ModelInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, fmt.Errorf("cannot read input file: %w", err)
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return ModelInput{}, err
	}

	var rawInput RawModelInput
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &rawInput,
	})
	if err != nil {
		return ModelInput{}, err
	}
	if err := decoder.Decode(inputJson); err != nil {
		return ModelInput{}, fmt.Errorf("cannot decode input file: %w", err)
	}
	return ProcessRawInput(rawInput, policy)
}

func ProcessRawInput(rawInput RawModelInput, policy Policy) (ModelInput, error) {
	if len(rawInput.Courses) == 0 {
		return ModelInput{}, ErrNoCourses
	}

	validate := validator.New()
	input := ModelInput{
		Courses:  make([]CourseRequirement, 0, len(rawInput.Courses)),
		Rooms:    make([]RoomRecord, 0, len(rawInput.Rooms)),
		Warnings: make([]string, 0),
	}
	warn := func(format string, args ...any) {
		input.Warnings = append(input.Warnings, fmt.Sprintf(format, args...))
	}

	//** Manage courses
	for i, course := range rawInput.Courses {
		course.Code = strings.TrimSpace(course.Code)
		course.Department = strings.TrimSpace(course.Department)

		// A course without a code and without any weekly component cannot be scheduled
		if course.Code == "" && course.Required().Total() == 0 {
			warn("course record %d has neither code nor weekly components: skipped", i)
			continue
		}
		if err := validate.Struct(course); err != nil {
			warn("course record %d (%q): %v: skipped", i, course.Code, err)
			continue
		}

		// Expand a base label into its paired sections
		if sections, ok := policy.SectionGroups[course.Department]; ok && len(sections) > 0 {
			for _, section := range sections {
				input.Courses = append(input.Courses, course.WithDepartment(section))
			}
			continue
		}
		input.Courses = append(input.Courses, course)
	}

	//** Manage rooms
	seenRooms := make(map[string]bool)
	for i, rawRoom := range rawInput.Rooms {
		room := RoomRecord{
			Id:       strings.TrimSpace(rawRoom.Id),
			Capacity: rawRoom.Capacity,
			Category: ParseRoomCategory(rawRoom.Category),
		}
		if err := validate.Struct(room); err != nil {
			warn("room record %d (%q): %v: skipped", i, room.Id, err)
			continue
		}
		if seenRooms[room.Id] {
			warn("room %q is listed more than once: keeping the first record", room.Id)
			continue
		}
		seenRooms[room.Id] = true
		input.Rooms = append(input.Rooms, room)
	}

	//** Manage empty semester/department combinations
	for _, semester := range input.Semesters() {
		courses := input.SemesterCourses(semester)
		for _, department := range policy.Departments {
			if !lo.SomeBy(courses, func(course CourseRequirement) bool { return course.Department == department }) {
				warn("semester %d has no courses for department %q", semester, department)
			}
		}
	}

	return input, nil
}
