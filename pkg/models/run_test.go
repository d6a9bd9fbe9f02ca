package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAutomationRun_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		results  []ActionResult
		expected RunStatus
	}{
		{
			name: "all succeeded",
			results: []ActionResult{
				{Status: ActionStatusSucceeded},
				{Status: ActionStatusSucceeded},
			},
			expected: RunStatusSucceeded,
		},
		{
			name: "mixed success and failure",
			results: []ActionResult{
				{Status: ActionStatusFailed},
				{Status: ActionStatusSucceeded},
			},
			expected: RunStatusPartial,
		},
		{
			name: "all failed",
			results: []ActionResult{
				{Status: ActionStatusFailed},
				{Status: ActionStatusFailed},
			},
			expected: RunStatusFailed,
		},
		{
			name:     "no actions",
			results:  nil,
			expected: RunStatusSucceeded,
		},
		{
			name: "skips do not count as failures",
			results: []ActionResult{
				{Status: ActionStatusSkipped},
				{Status: ActionStatusSucceeded},
			},
			expected: RunStatusSucceeded,
		},
		{
			name: "skip plus failure is failed",
			results: []ActionResult{
				{Status: ActionStatusSkipped},
				{Status: ActionStatusFailed},
			},
			expected: RunStatusFailed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			run := &AutomationRun{Results: tc.results}
			run.Resolve()

			assert.Equal(t, tc.expected, run.Status)
		})
	}
}

func TestTrigger_IsValid(t *testing.T) {
	for _, trigger := range Triggers() {
		assert.True(t, trigger.IsValid(), trigger)
	}

	assert.False(t, Trigger("").IsValid())
	assert.False(t, Trigger("FULL_MOON").IsValid())
}

func TestSubscriptionPlan_Features(t *testing.T) {
	assert.False(t, PlanStarter.Features().Automations)
	assert.Equal(t, 10, PlanGrowth.Features().MaxAutomations)
	assert.Equal(t, 50, PlanPremium.Features().MaxAutomations)
	assert.Equal(t, Unlimited, PlanAgency.Features().MaxAutomations)

	// Unknown plans degrade to starter.
	assert.Equal(t, PlanStarter.Features(), SubscriptionPlan("LEGACY").Features())
}
