package model

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// CombinedGroup lists the departments that attend combined classes together and the courses taught that way
type CombinedGroup struct {
	Departments []string `mapstructure:"departments"`
	Courses     []string `mapstructure:"courses"`
}

// Alternation names the departments whose shared half-semester courses run in opposite sessions
type Alternation struct {
	Base  string   `mapstructure:"base"`
	Peers []string `mapstructure:"peers"`
}

type Markers struct {
	Minor    string `mapstructure:"minor"`
	Elective string `mapstructure:"elective"`
	HSS      string `mapstructure:"hss"`
}

type Policy struct {
	Departments    []string                 `mapstructure:"departments"`
	SectionGroups  map[string][]string      `mapstructure:"section_groups"`
	CombinedGroups map[string]CombinedGroup `mapstructure:"combined_groups"`
	Alternation    Alternation              `mapstructure:"alternation"`
	LabPools       map[string]RoomCategory  `mapstructure:"lab_pools"`
	Markers        Markers                  `mapstructure:"markers"`
}

func DefaultPolicy() Policy {
	return Policy{
		Departments: []string{"CSE-A", "CSE-B", "DSAI", "ECE"},
		SectionGroups: map[string][]string{
			"CSE": {"CSE-A", "CSE-B"},
		},
		CombinedGroups: map[string]CombinedGroup{
			"CSE":      {Departments: []string{"CSE-A", "CSE-B"}},
			"DSAI_ECE": {Departments: []string{"DSAI", "ECE"}},
		},
		Alternation: Alternation{
			Base:  "CSE",
			Peers: []string{"DSAI", "ECE"},
		},
		LabPools: map[string]RoomCategory{
			"CSE-A": SoftwareLab,
			"CSE-B": SoftwareLab,
			"DSAI":  SoftwareLab,
			"ECE":   HardwareLab,
		},
		Markers: Markers{
			Minor:    "MINOR",
			Elective: "ELEC",
			HSS:      "HSS",
		},
	}
}

func (policy Policy) Validate() error {
	seen := make(map[string]string)
	for base, sections := range policy.SectionGroups {
		for _, section := range sections {
			if other, ok := seen[section]; ok {
				return fmt.Errorf("department %q belongs to section groups %q and %q", section, other, base)
			}
			seen[section] = base
		}
	}

	seen = make(map[string]string)
	for key, group := range policy.CombinedGroups {
		for _, department := range group.Departments {
			if other, ok := seen[department]; ok {
				return fmt.Errorf("department %q belongs to combined groups %q and %q", department, other, key)
			}
			seen[department] = key
		}
	}

	if policy.Alternation.Base != "" && slices.Contains(policy.Alternation.Peers, policy.Alternation.Base) {
		return fmt.Errorf("alternation base %q cannot be one of its peers", policy.Alternation.Base)
	}
	return nil
}

// ProcessingOrder returns the departments in the order they must be scheduled: the alternation base group first,
// then the configured order, then any remaining department alphabetically
func (policy Policy) ProcessingOrder(departments []string) []string {
	present := lo.Uniq(departments)
	order := make([]string, 0, len(present))

	if sections, ok := policy.SectionGroups[policy.Alternation.Base]; ok {
		order = append(order, lo.Filter(sections, func(section string, _ int) bool { return slices.Contains(present, section) })...)
	} else if slices.Contains(present, policy.Alternation.Base) {
		order = append(order, policy.Alternation.Base)
	}

	for _, department := range policy.Departments {
		if slices.Contains(present, department) && !slices.Contains(order, department) {
			order = append(order, department)
		}
	}

	remaining := lo.Filter(present, func(department string, _ int) bool { return !slices.Contains(order, department) })
	slices.Sort(remaining)
	return append(order, remaining...)
}
