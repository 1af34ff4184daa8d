package domain

import "fmt"

// Plan tags a user's subscription variant. It is a value: two Free plans
// are equal, and switching plans replaces the tag on the user. The zero
// value is PlanFree.
type Plan uint8

const (
	PlanFree Plan = iota
	PlanPremiumBase
	PlanPremiumTop
)

// Persisted plan tags.
const (
	PlanTagFree        = "FreePlan"
	PlanTagPremiumBase = "PremiumBase"
	PlanTagPremiumTop  = "PremiumTop"
)

// Plans lists every variant.
var Plans = []Plan{PlanFree, PlanPremiumBase, PlanPremiumTop}

// Tag returns the persisted type tag.
func (p Plan) Tag() string {
	switch p {
	case PlanPremiumBase:
		return PlanTagPremiumBase
	case PlanPremiumTop:
		return PlanTagPremiumTop
	default:
		return PlanTagFree
	}
}

// String implements fmt.Stringer.
func (p Plan) String() string {
	switch p {
	case PlanFree, PlanPremiumBase, PlanPremiumTop:
		return p.Tag()
	default:
		return fmt.Sprintf("Plan(%d)", uint8(p))
	}
}

// ParsePlanTag maps a persisted tag to a plan. Absent or unknown tags map
// to PlanFree.
func ParsePlanTag(tag string) Plan {
	switch tag {
	case PlanTagPremiumBase:
		return PlanPremiumBase
	case PlanTagPremiumTop:
		return PlanPremiumTop
	default:
		return PlanFree
	}
}
