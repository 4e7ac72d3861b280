package services

import (
	"fmt"
	"sort"

	"leadsync/internal/models"
)

// BillingService exposes the subscription tier catalogue
type BillingService interface {
	Plans() []models.Plan
	Plan(id string) (*models.Plan, error)
}

type billingService struct {
	plans map[string]models.Plan
}

// Predefined plans
var availablePlans = map[string]models.Plan{
	"starter": {
		ID:          "starter",
		Name:        "Starter",
		Description: "Identify visitors on a single website",
		Amount:      49.0,
		Currency:    "USD",
		Interval:    "monthly",
		LeadLimit:   500,
		Features: []string{
			"1 tracked website",
			"Lead dashboard",
			"CSV export",
			"Email support",
		},
	},
	"growth": {
		ID:          "growth",
		Name:        "Growth",
		Description: "CRM sync and richer lead data for growing teams",
		Amount:      149.0,
		Currency:    "USD",
		Interval:    "monthly",
		LeadLimit:   2500,
		Features: []string{
			"5 tracked websites",
			"CRM integrations",
			"Traffic analytics",
			"Priority support",
		},
	},
	"scale": {
		ID:          "scale",
		Name:        "Scale",
		Description: "Unlimited sites and leads for agencies",
		Amount:      399.0,
		Currency:    "USD",
		Interval:    "monthly",
		LeadLimit:   0,
		Features: []string{
			"Unlimited websites",
			"Unlimited leads",
			"Audit trail",
			"Dedicated account manager",
		},
	},
}

func NewBillingService() BillingService {
	return &billingService{plans: availablePlans}
}

// Plans returns the catalogue, cheapest first
func (s *billingService) Plans() []models.Plan {
	plans := make([]models.Plan, 0, len(s.plans))
	for _, p := range s.plans {
		plans = append(plans, p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Amount < plans[j].Amount })
	return plans
}

func (s *billingService) Plan(id string) (*models.Plan, error) {
	plan, ok := s.plans[id]
	if !ok {
		return nil, fmt.Errorf("invalid plan: %s", id)
	}
	return &plan, nil
}
