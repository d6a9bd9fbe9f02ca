package models

// SubscriptionPlan is an organization's billing tier.
type SubscriptionPlan string

const (
	PlanStarter SubscriptionPlan = "STARTER"
	PlanGrowth  SubscriptionPlan = "GROWTH"
	PlanPremium SubscriptionPlan = "PREMIUM"
	PlanAgency  SubscriptionPlan = "AGENCY"
)

// Unlimited marks a usage limit with no cap.
const Unlimited = -1

// PlanFeatures describes what a plan can do and how much of it. Limits use
// Unlimited (-1) for uncapped plans.
type PlanFeatures struct {
	VoiceReceptionist bool
	WhatsAppAutopilot bool
	ChatWidget        bool
	Automations       bool
	APIAccess         bool
	WhiteLabel        bool
	MaxLeads          int
	MaxBookings       int
	MaxAutomations    int
}

var planFeatures = map[SubscriptionPlan]PlanFeatures{
	PlanStarter: {
		WhatsAppAutopilot: true,
		ChatWidget:        true,
		MaxLeads:          200,
		MaxBookings:       100,
		MaxAutomations:    0,
	},
	PlanGrowth: {
		WhatsAppAutopilot: true,
		ChatWidget:        true,
		Automations:       true,
		MaxLeads:          1000,
		MaxBookings:       500,
		MaxAutomations:    10,
	},
	PlanPremium: {
		VoiceReceptionist: true,
		WhatsAppAutopilot: true,
		ChatWidget:        true,
		Automations:       true,
		APIAccess:         true,
		MaxLeads:          5000,
		MaxBookings:       2000,
		MaxAutomations:    50,
	},
	PlanAgency: {
		VoiceReceptionist: true,
		WhatsAppAutopilot: true,
		ChatWidget:        true,
		Automations:       true,
		APIAccess:         true,
		WhiteLabel:        true,
		MaxLeads:          Unlimited,
		MaxBookings:       Unlimited,
		MaxAutomations:    Unlimited,
	},
}

// Features returns the feature table for the plan. Unknown plans fall back to
// the starter tier.
func (p SubscriptionPlan) Features() PlanFeatures {
	features, ok := planFeatures[p]
	if !ok {
		return planFeatures[PlanStarter]
	}

	return features
}
