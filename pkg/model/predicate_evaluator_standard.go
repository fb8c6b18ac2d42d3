package model

import (
	"slices"
	"strings"
)

type predicateEvaluatorStandard struct {
	policy         Policy
	sectionBase    map[string]string // Section -> base label
	combinedGroups map[string]string // Department -> combined group key
}

func NewPredicateEvaluator(policy Policy) PredicateEvaluator {
	evaluator := predicateEvaluatorStandard{
		policy:         policy,
		sectionBase:    make(map[string]string),
		combinedGroups: make(map[string]string),
	}

	for base, sections := range policy.SectionGroups {
		evaluator.sectionBase[base] = base
		for _, section := range sections {
			evaluator.sectionBase[section] = base
		}
	}

	for key, group := range policy.CombinedGroups {
		for _, department := range group.Departments {
			evaluator.combinedGroups[department] = key
		}
	}

	return &evaluator
}

func (evaluator *predicateEvaluatorStandard) CurriculumPeers(department string) []string {
	base, ok := evaluator.sectionBase[department]
	if !ok {
		return []string{department}
	}
	return append([]string{base}, evaluator.policy.SectionGroups[base]...)
}

func (evaluator *predicateEvaluatorStandard) Combined(department, course string) (string, bool) {
	group, ok := evaluator.combinedGroups[department]
	if !ok {
		return "", false
	}
	if !slices.Contains(evaluator.policy.CombinedGroups[group].Courses, course) {
		return "", false
	}
	return group, true
}

func (evaluator *predicateEvaluatorStandard) AlternationMember(department string) (string, bool) {
	if evaluator.InAlternationBase(department) {
		return evaluator.policy.Alternation.Base, true
	}
	if slices.Contains(evaluator.policy.Alternation.Peers, department) {
		return department, true
	}
	return "", false
}

func (evaluator *predicateEvaluatorStandard) InAlternationBase(department string) bool {
	base := evaluator.policy.Alternation.Base
	if base == "" {
		return false
	}
	if department == base {
		return true
	}
	return evaluator.sectionBase[department] == base
}

func (evaluator *predicateEvaluatorStandard) LabCategory(department string) (RoomCategory, bool) {
	category, ok := evaluator.policy.LabPools[department]
	return category, ok
}

func (evaluator *predicateEvaluatorStandard) IsMinor(course CourseRequirement) bool {
	return marked(course, evaluator.policy.Markers.Minor)
}

func (evaluator *predicateEvaluatorStandard) IsHSS(course CourseRequirement) bool {
	return marked(course, evaluator.policy.Markers.HSS)
}

func (evaluator *predicateEvaluatorStandard) IsElective(course CourseRequirement) bool {
	if evaluator.IsHSS(course) {
		return false
	}
	return course.Elective || marked(course, evaluator.policy.Markers.Elective)
}

func (evaluator *predicateEvaluatorStandard) Fits(room RoomRecord, need int) bool {
	return room.Capacity <= 0 || need <= 0 || room.Capacity >= need
}

// Case-insensitive marker lookup over code and name
func marked(course CourseRequirement, marker string) bool {
	if marker == "" {
		return false
	}
	marker = strings.ToUpper(marker)
	return strings.Contains(strings.ToUpper(course.Code), marker) || strings.Contains(strings.ToUpper(course.Name), marker)
}
