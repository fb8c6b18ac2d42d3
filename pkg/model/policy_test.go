package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessingOrder(t *testing.T) {
	policy := DefaultPolicy()

	order := policy.ProcessingOrder([]string{"ME", "ECE", "DSAI", "CSE-B", "CSE-A", "ECE", "AE"})

	assert.Equal(t, []string{"CSE-A", "CSE-B", "DSAI", "ECE", "AE", "ME"}, order)
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	policy := DefaultPolicy()
	policy.SectionGroups["DS"] = []string{"CSE-A"}
	assert.Error(t, policy.Validate())

	policy = DefaultPolicy()
	policy.CombinedGroups["OTHER"] = CombinedGroup{Departments: []string{"ECE"}}
	assert.Error(t, policy.Validate())

	policy = DefaultPolicy()
	policy.Alternation.Peers = append(policy.Alternation.Peers, "CSE")
	assert.Error(t, policy.Validate())
}
