package model

type PredicateEvaluator interface {
	// Returns the departments sharing a curriculum with department (base label included), department itself when it has no section group
	CurriculumPeers(department string) []string

	// Returns the combined-class group under which department attends course as a combined class
	Combined(department, course string) (string, bool)

	// Returns the normalized alternation member for department: the base key for the base group, the department for a peer
	AlternationMember(department string) (string, bool)

	// Checks whether department belongs to the alternation base group
	InAlternationBase(department string) bool

	// Returns the lab category used by department
	LabCategory(department string) (RoomCategory, bool)

	// Checks whether the course carries the minor marker
	IsMinor(course CourseRequirement) bool

	// Checks whether the course carries the HSS marker
	IsHSS(course CourseRequirement) bool

	// Checks whether the course is an elective: flagged or marked, never when marked HSS
	IsElective(course CourseRequirement) bool

	// Checks whether a group of the given size fits in the room, unknown sizes or capacities always fit
	Fits(room RoomRecord, need int) bool
}
