package model

type Component int

const (
	Lecture Component = iota
	Tutorial
	Lab
	Minor
	Elective // Lecture drawn from the semester-wide elective basket
)

// Components placed for a regular course, in placement priority
var CourseComponents = []Component{Lab, Lecture, Tutorial}

func (component Component) String() string {
	switch component {
	case Lecture:
		return "Lecture"
	case Tutorial:
		return "Tutorial"
	case Lab:
		return "Lab"
	case Minor:
		return "Minor"
	case Elective:
		return "Elective"
	}
	return "Unknown"
}

// Suffix is appended to the course code in grid labels
func (component Component) Suffix() string {
	switch component {
	case Tutorial:
		return " (Tut)"
	case Lab:
		return " (Lab)"
	case Minor:
		return " (Minor)"
	}
	return ""
}

type Session string

const (
	PreMid  Session = "Pre-Mid"
	PostMid Session = "Post-Mid"
)

var Sessions = []Session{PreMid, PostMid}

func (session Session) Opposite() Session {
	if session == PreMid {
		return PostMid
	}
	return PreMid
}
