package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/limaJavier/timegrid/pkg/model"
)

// CourseRow is one line of the course table
type CourseRow struct {
	Code       string `csv:"Course Code"`
	Name       string `csv:"Course Name"`
	Department string `csv:"Department"`
	Semester   string `csv:"Semester"`
	Credits    string `csv:"Credits"`
	LTPSC      string `csv:"LTPSC"`
	Elective   string `csv:"Elective"`
	Registered string `csv:"Registered Students"`
}

// ClassroomRow is one line of the classroom table
type ClassroomRow struct {
	Room     string `csv:"Room"`
	Capacity string `csv:"Capacity"`
	Type     string `csv:"Type"`
}

func newReader(delim rune) func(in io.Reader) gocsv.CSVReader {
	return func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		r.TrimLeadingSpace = true
		r.FieldsPerRecord = -1
		return r
	}
}

// LoadInput reads the course and classroom tables and normalizes them into a model input
func LoadInput(coursesPath, classroomsPath string, delim rune, policy model.Policy) (model.ModelInput, error) {
	courses, courseWarnings, err := LoadCourses(coursesPath, delim, model.NewPredicateEvaluator(policy))
	if err != nil {
		return model.ModelInput{}, err
	}

	rooms := make([]model.RawRoom, 0)
	if classroomsPath != "" {
		if rooms, err = LoadClassrooms(classroomsPath, delim); err != nil {
			return model.ModelInput{}, err
		}
	}

	input, err := model.ProcessRawInput(model.RawModelInput{Courses: courses, Rooms: rooms}, policy)
	if err != nil {
		return model.ModelInput{}, err
	}
	input.Warnings = append(courseWarnings, input.Warnings...)
	return input, nil
}

// LoadCourses reads the course table. Rows with an unreadable semester are skipped, missing or malformed LTPSC values fall back to credit-based defaults.
func LoadCourses(path string, delim rune, evaluator model.PredicateEvaluator) ([]model.CourseRequirement, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open course file: %w", err)
	}
	defer file.Close()

	rows := []*CourseRow{}
	if err := gocsv.UnmarshalCSV(newReader(delim)(file), &rows); err != nil {
		return nil, nil, fmt.Errorf("cannot parse course file %v: %w", path, err)
	}

	courses := make([]model.CourseRequirement, 0, len(rows))
	warnings := make([]string, 0)
	for i, row := range rows {
		semester, err := strconv.ParseFloat(strings.TrimSpace(row.Semester), 64)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("course row %d (%q) has an invalid semester %q: skipped", i+1, row.Code, row.Semester))
			continue
		}

		course := model.CourseRequirement{
			Code:       strings.TrimSpace(row.Code),
			Name:       strings.TrimSpace(row.Name),
			Department: strings.TrimSpace(row.Department),
			Semester:   int(semester),
			Elective:   parseFlag(row.Elective),
			Enrollment: parseInt(row.Registered),
		}

		ltpscCredits := defaultLTPSCCredits
		if credits, err := strconv.ParseFloat(strings.TrimSpace(row.Credits), 64); err == nil {
			course.Credits = credits
			ltpscCredits = credits
		}

		counts, ok := ParseLTPSC(row.LTPSC, ltpscCredits, evaluator.IsMinor(course))
		if !ok && !evaluator.IsMinor(course) {
			warnings = append(warnings, fmt.Sprintf("course %q has missing or malformed LTPSC %q: assumed %+v", course.Code, row.LTPSC, counts))
		}
		course.Lectures, course.Tutorials, course.Labs = counts.Lectures, counts.Tutorials, counts.Labs
		courses = append(courses, course)
	}
	return courses, warnings, nil
}

// LoadClassrooms reads the classroom table
func LoadClassrooms(path string, delim rune) ([]model.RawRoom, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open classroom file: %w", err)
	}
	defer file.Close()

	rows := []*ClassroomRow{}
	if err := gocsv.UnmarshalCSV(newReader(delim)(file), &rows); err != nil {
		return nil, fmt.Errorf("cannot parse classroom file %v: %w", path, err)
	}

	rooms := make([]model.RawRoom, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Room) == "" {
			continue
		}
		rooms = append(rooms, model.RawRoom{
			Id:       strings.TrimSpace(row.Room),
			Capacity: parseInt(row.Capacity),
			Category: row.Type,
		})
	}
	return rooms, nil
}

// parseInt reads whole numbers written as integers or floats, anything else is zero
func parseInt(value string) int {
	number, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || number < 0 {
		return 0
	}
	return int(number)
}

func parseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "y", "yes", "true", "elective":
		return true
	}
	return false
}
