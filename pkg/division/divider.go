package division

import (
	"slices"
	"strings"

	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Credit value above which a regular course runs in both sessions
const halfSemesterCredits = 2.0

type Division struct {
	Pre      []model.CourseRequirement
	Post     []model.CourseRequirement
	Excluded []model.CourseRequirement // Minor entries, scheduled as the minor block instead
	Missing  []string                  // Input codes absent from both sessions
}

func (division Division) Session(session model.Session) []model.CourseRequirement {
	if session == model.PreMid {
		return division.Pre
	}
	return division.Post
}

// Divider splits the courses of one department and semester into the Pre-Mid and Post-Mid lists
type Divider interface {
	Divide(semester int, department string, departmentCourses, semesterCourses []model.CourseRequirement) Division
}

type dividerImplementation struct {
	evaluator   model.PredicateEvaluator
	alternation *AlternationRegistry
	logger      *zap.Logger
}

func NewDivider(evaluator model.PredicateEvaluator, alternation *AlternationRegistry, logger *zap.Logger) Divider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if alternation == nil {
		alternation = NewAlternationRegistry()
	}
	return &dividerImplementation{
		evaluator:   evaluator,
		alternation: alternation,
		logger:      logger,
	}
}

func (divider *dividerImplementation) Divide(semester int, department string, departmentCourses, semesterCourses []model.CourseRequirement) Division {
	logger := divider.logger.With(zap.Int("semester", semester), zap.String("department", department))
	division := Division{}

	//** Exclude minors
	courses := make([]model.CourseRequirement, 0, len(departmentCourses))
	for _, course := range departmentCourses {
		if divider.evaluator.IsMinor(course) {
			division.Excluded = append(division.Excluded, course)
			continue
		}
		courses = append(courses, course)
	}
	semesterCourses = lo.Filter(semesterCourses, func(course model.CourseRequirement, _ int) bool {
		return !divider.evaluator.IsMinor(course)
	})
	if len(courses) == 0 {
		logger.Warn("no courses to divide")
	}

	//** Classify
	peers := divider.evaluator.CurriculumPeers(department)
	electives := divider.electives(department, peers, courses, semesterCourses)
	electiveCodes := model.Codes(electives)
	hss := divider.hss(department, courses, semesterCourses)
	hssCodes := model.Codes(hss)

	regular := lo.Filter(courses, func(course model.CourseRequirement, _ int) bool {
		return !slices.Contains(electiveCodes, course.Code) && !slices.Contains(hssCodes, course.Code)
	})
	full := lo.Filter(regular, func(course model.CourseRequirement, _ int) bool {
		return course.CreditsOrDefault() > halfSemesterCredits
	})
	half := divider.halfSemester(department, peers, regular, semesterCourses, electiveCodes)

	//** Split half-semester courses by code
	slices.SortStableFunc(half, func(course1, course2 model.CourseRequirement) int {
		return strings.Compare(course1.Code, course2.Code)
	})
	splitPoint := (len(half) + 1) / 2
	preHalf, postHalf := half[:splitPoint], half[splitPoint:]

	both := make([]model.CourseRequirement, 0, len(electives)+len(hss)+len(full))
	both = append(both, electives...)
	both = append(both, hss...)
	both = append(both, full...)
	division.Pre = model.UniqueByCode(append(slices.Clone(both), preHalf...))
	division.Post = model.UniqueByCode(append(slices.Clone(both), postHalf...))

	//** Alternate shared two-credit courses across departments
	division.Pre, division.Post = divider.alternate(semester, department, division.Pre, division.Post, electiveCodes, semesterCourses, logger)

	//** Check every input course landed in a session
	assigned := append(model.Codes(division.Pre), model.Codes(division.Post)...)
	division.Missing = lo.Uniq(lo.Filter(model.Codes(courses), func(code string, _ int) bool {
		return !slices.Contains(assigned, code)
	}))
	if len(division.Missing) > 0 {
		logger.Error("courses not assigned to any session", zap.Strings("codes", division.Missing))
	}

	overlap := lo.Intersect(model.Codes(division.Pre), model.Codes(division.Post))
	logger.Info("session allocation",
		zap.Int("pre_mid", len(division.Pre)),
		zap.Int("post_mid", len(division.Post)),
		zap.Int("both_sessions", len(overlap)),
		zap.Int("excluded_minors", len(division.Excluded)),
	)
	return division
}

// Electives of the department plus every elective of its curriculum peers across the semester
func (divider *dividerImplementation) electives(department string, peers []string, courses, semesterCourses []model.CourseRequirement) []model.CourseRequirement {
	own := lo.Filter(courses, func(course model.CourseRequirement, _ int) bool {
		return divider.evaluator.IsElective(course)
	})
	shared := lo.FilterMap(semesterCourses, func(course model.CourseRequirement, _ int) (model.CourseRequirement, bool) {
		if !divider.evaluator.IsElective(course) || !slices.Contains(peers, course.Department) {
			return model.CourseRequirement{}, false
		}
		return course.WithDepartment(department), true
	})
	return model.UniqueByCode(append(own, shared...))
}

// HSS courses of the department, or a copy of the first semester-wide HSS course when it has none
func (divider *dividerImplementation) hss(department string, courses, semesterCourses []model.CourseRequirement) []model.CourseRequirement {
	own := lo.Filter(courses, func(course model.CourseRequirement, _ int) bool {
		return divider.evaluator.IsHSS(course)
	})
	if len(own) > 0 {
		return model.UniqueByCode(own)
	}

	first, ok := lo.Find(semesterCourses, func(course model.CourseRequirement) bool {
		return divider.evaluator.IsHSS(course)
	})
	if !ok {
		return nil
	}
	copied := first.WithDepartment(department)
	copied.Elective = false
	return []model.CourseRequirement{copied}
}

// Half-semester courses; paired sections draw them from the whole section group so that they split identically
func (divider *dividerImplementation) halfSemester(department string, peers []string, regular, semesterCourses []model.CourseRequirement, electiveCodes []string) []model.CourseRequirement {
	isHalf := func(course model.CourseRequirement) bool {
		return course.CreditsOrDefault() <= halfSemesterCredits
	}

	if len(peers) <= 1 {
		return model.UniqueByCode(lo.Filter(regular, func(course model.CourseRequirement, _ int) bool { return isHalf(course) }))
	}

	half := lo.FilterMap(semesterCourses, func(course model.CourseRequirement, _ int) (model.CourseRequirement, bool) {
		if !slices.Contains(peers, course.Department) ||
			!isHalf(course) ||
			divider.evaluator.IsElective(course) ||
			divider.evaluator.IsHSS(course) ||
			slices.Contains(electiveCodes, course.Code) {
			return model.CourseRequirement{}, false
		}
		return course.WithDepartment(department), true
	})
	// Own courses first so that their records win deduplication
	own := lo.Filter(regular, func(course model.CourseRequirement, _ int) bool { return isHalf(course) })
	return model.UniqueByCode(append(own, half...))
}

// Shared courses of at most two credits run in one session per department: the base group records its sessions,
// peers move them to the opposite one. Electives never move.
func (divider *dividerImplementation) alternate(semester int, department string, pre, post []model.CourseRequirement, electiveCodes []string, semesterCourses []model.CourseRequirement, logger *zap.Logger) ([]model.CourseRequirement, []model.CourseRequirement) {
	if _, ok := divider.evaluator.AlternationMember(department); !ok {
		return pre, post
	}

	shared := func(code string) bool {
		if slices.Contains(electiveCodes, code) {
			return false
		}
		rows := lo.Filter(semesterCourses, func(course model.CourseRequirement, _ int) bool { return course.Code == code })
		if lo.SomeBy(rows, divider.evaluator.IsElective) {
			return false
		}
		if !lo.SomeBy(rows, func(course model.CourseRequirement) bool { return course.CreditsOrDefault() <= halfSemesterCredits }) {
			return false
		}
		members := lo.Uniq(lo.FilterMap(rows, func(course model.CourseRequirement, _ int) (string, bool) {
			return divider.evaluator.AlternationMember(course.Department)
		}))
		return len(members) >= 2
	}

	// The base group records where it teaches each shared course
	if divider.evaluator.InAlternationBase(department) {
		for _, course := range pre {
			if shared(course.Code) {
				divider.alternation.Record(semester, course.Code, model.PreMid)
			}
		}
		for _, course := range post {
			if shared(course.Code) {
				divider.alternation.Record(semester, course.Code, model.PostMid)
			}
		}
		return pre, post
	}

	// Peers teach it in the opposite session
	for _, course := range append(slices.Clone(pre), post...) {
		if !shared(course.Code) {
			continue
		}
		baseSession, ok := divider.alternation.Lookup(semester, course.Code)
		if !ok {
			logger.Debug("shared course not yet placed by the base group", zap.String("course", course.Code))
			continue
		}

		isCourse := func(other model.CourseRequirement, _ int) bool { return other.Code == course.Code }
		if baseSession.Opposite() == model.PreMid {
			post = lo.Reject(post, isCourse)
			if !lo.SomeBy(pre, func(other model.CourseRequirement) bool { return other.Code == course.Code }) {
				pre = append(pre, course)
			}
		} else {
			pre = lo.Reject(pre, isCourse)
			if !lo.SomeBy(post, func(other model.CourseRequirement) bool { return other.Code == course.Code }) {
				post = append(post, course)
			}
		}
	}
	return pre, post
}
