package csvio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"

	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/limaJavier/timegrid/pkg/rooms"
)

// SummaryRow is one line of the course allocation summary
type SummaryRow struct {
	Semester           int    `csv:"Semester"`
	Department         string `csv:"Department"`
	Session            string `csv:"Session"`
	Code               string `csv:"Course Code"`
	Name               string `csv:"Course Name"`
	LecturesRequired   int    `csv:"Lectures Required"`
	LecturesScheduled  int    `csv:"Lectures Scheduled"`
	TutorialsRequired  int    `csv:"Tutorials Required"`
	TutorialsScheduled int    `csv:"Tutorials Scheduled"`
	LabsRequired       int    `csv:"Labs Required"`
	LabsScheduled      int    `csv:"Labs Scheduled"`
	Status             string `csv:"Status"`
	Room               string `csv:"Room Allocated"`
	LabRoom            string `csv:"Lab Room Allocated"`
	Elective           bool   `csv:"Elective"`
	Combined           bool   `csv:"Combined Class"`
}

// ConflictRow is one (room, booking) pair of a room conflict
type ConflictRow struct {
	Semester   int    `csv:"Semester"`
	Day        string `csv:"Day"`
	Slot       string `csv:"Slot"`
	Room       string `csv:"Room"`
	Department string `csv:"Department"`
	Code       string `csv:"Course Code"`
	Session    string `csv:"Session"`
	Suggestion string `csv:"Suggested Room"`
}

// WriteGrids writes one CSV file per schedule grid into dir and returns the written paths
func WriteGrids(dir string, grids []*model.ScheduleGrid) ([]string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("cannot create output directory: %w", err)
	}

	paths := make([]string, 0, len(grids))
	for _, grid := range grids {
		path := filepath.Join(dir, grid.SheetName()+".csv")
		if err := writeRows(path, grid.Rows()); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeRows(path string, rows [][]string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %v: %w", path, err)
	}
	defer out.Close()

	writer := gocsv.DefaultCSVWriter(out)
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("cannot write %v: %w", path, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func SummaryRows(results []model.AllocationResult) []*SummaryRow {
	return lo.Map(results, func(result model.AllocationResult, _ int) *SummaryRow {
		return &SummaryRow{
			Semester:           result.Semester,
			Department:         result.Department,
			Session:            string(result.Session),
			Code:               result.Code,
			Name:               result.Name,
			LecturesRequired:   result.Required.Lectures,
			LecturesScheduled:  result.Actual.Lectures,
			TutorialsRequired:  result.Required.Tutorials,
			TutorialsScheduled: result.Actual.Tutorials,
			LabsRequired:       result.Required.Labs,
			LabsScheduled:      result.Actual.Labs,
			Status:             result.Status.String(),
			Room:               result.Room,
			LabRoom:            result.LabRoom,
			Elective:           result.Elective,
			Combined:           result.Combined,
		}
	})
}

// WriteSummary writes the per-course allocation summary
func WriteSummary(path string, results []model.AllocationResult) error {
	rows := SummaryRows(results)
	return marshalFile(path, &rows)
}

func ConflictRows(conflicts []rooms.Conflict) []*ConflictRow {
	return lo.FlatMap(conflicts, func(conflict rooms.Conflict, _ int) []*ConflictRow {
		return lo.Map(conflict.Entries, func(entry rooms.Entry, _ int) *ConflictRow {
			suggestion, _ := lo.Find(conflict.Suggestion, func(reassignment rooms.Reassignment) bool { return reassignment.Entry == entry })
			return &ConflictRow{
				Semester:   conflict.Semester,
				Day:        string(conflict.Day),
				Slot:       string(conflict.Slot),
				Room:       conflict.Room,
				Department: entry.Department,
				Code:       entry.Code,
				Session:    string(entry.Session),
				Suggestion: suggestion.To,
			}
		})
	})
}

// WriteConflicts writes one line per booking involved in a room conflict
func WriteConflicts(path string, conflicts []rooms.Conflict) error {
	rows := ConflictRows(conflicts)
	return marshalFile(path, &rows)
}

func marshalFile(path string, rows any) error {
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %v: %w", path, err)
	}
	defer out.Close()

	if err := gocsv.MarshalFile(rows, out); err != nil {
		return fmt.Errorf("cannot write %v: %w", path, err)
	}
	return nil
}

// FormatConflict renders a conflict as "<semester> <day> <slot> | Room <room> -> <dept>:<course> (<session>); ..."
func FormatConflict(conflict rooms.Conflict) string {
	entries := lo.Map(conflict.Entries, func(entry rooms.Entry, _ int) string {
		return fmt.Sprintf("%v:%v (%v)", entry.Department, entry.Code, entry.Session)
	})
	return fmt.Sprintf("%d %v %v | Room %v -> %v", conflict.Semester, conflict.Day, conflict.Slot, conflict.Room, strings.Join(entries, "; "))
}
