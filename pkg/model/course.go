package model

import "github.com/samber/lo"

// Credits assumed for a course whose credit value is missing
const DefaultCredits = 2.0

type CourseRequirement struct {
	Code       string  `mapstructure:"code" validate:"required"`
	Name       string  `mapstructure:"name"`
	Department string  `mapstructure:"department" validate:"required"`
	Semester   int     `mapstructure:"semester" validate:"gte=1"`
	Credits    float64 `mapstructure:"credits" validate:"gte=0"`
	Elective   bool    `mapstructure:"elective"`
	Enrollment int     `mapstructure:"enrollment" validate:"gte=0"`
	Lectures   int     `mapstructure:"lectures" validate:"gte=0"`
	Tutorials  int     `mapstructure:"tutorials" validate:"gte=0"`
	Labs       int     `mapstructure:"labs" validate:"gte=0"` // Lab sessions per week, not hours
}

// CreditsOrDefault treats a non-positive credit value as missing
func (course CourseRequirement) CreditsOrDefault() float64 {
	if course.Credits <= 0 {
		return DefaultCredits
	}
	return course.Credits
}

func (course CourseRequirement) Required() Counts {
	return Counts{
		Lectures:  course.Lectures,
		Tutorials: course.Tutorials,
		Labs:      course.Labs,
	}
}

// WithDepartment returns a copy of the course relabelled to another department
func (course CourseRequirement) WithDepartment(department string) CourseRequirement {
	course.Department = department
	return course
}

// Codes returns the course codes preserving order
func Codes(courses []CourseRequirement) []string {
	return lo.Map(courses, func(course CourseRequirement, _ int) string { return course.Code })
}

// UniqueByCode keeps the first occurrence of each course code
func UniqueByCode(courses []CourseRequirement) []CourseRequirement {
	return lo.UniqBy(courses, func(course CourseRequirement) string { return course.Code })
}
