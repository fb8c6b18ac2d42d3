package division

import "github.com/limaJavier/timegrid/pkg/model"

// AlternationRegistry remembers, per semester, the session in which the alternation base group teaches each
// shared course of at most two credits
type AlternationRegistry struct {
	sessions map[int]map[string]model.Session
}

func NewAlternationRegistry() *AlternationRegistry {
	return &AlternationRegistry{
		sessions: make(map[int]map[string]model.Session),
	}
}

// Record stores the session of a course unless one was already recorded for the semester, first writer wins
func (registry *AlternationRegistry) Record(semester int, code string, session model.Session) bool {
	recorded, ok := registry.sessions[semester]
	if !ok {
		recorded = make(map[string]model.Session)
		registry.sessions[semester] = recorded
	}
	if _, ok := recorded[code]; ok {
		return false
	}
	recorded[code] = session
	return true
}

func (registry *AlternationRegistry) Lookup(semester int, code string) (model.Session, bool) {
	session, ok := registry.sessions[semester][code]
	return session, ok
}
