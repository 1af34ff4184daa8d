// Package entitlement maps subscription plans to capabilities and point
// accrual. Every function here is pure.
package entitlement

import "github.com/listen-stream/catalog/internal/domain"

// UpgradeBonus is granted once by the upgrade-to-PremiumTop operation.
const UpgradeBonus = 100.0

// Policy is the behavior attached to a plan variant.
type Policy interface {
	Plan() domain.Plan
	// CanCreatePlaylist gates playlist creation and track edits.
	CanCreatePlaylist() bool
	// CanBrowsePlaylist gates ordered next/previous navigation.
	CanBrowsePlaylist() bool
	CanAccessFavourites() bool
	// AddPoints returns the balance after one play. It never decreases.
	AddPoints(current float64) float64
}

type freePolicy struct{}

func (freePolicy) Plan() domain.Plan                 { return domain.PlanFree }
func (freePolicy) CanCreatePlaylist() bool           { return false }
func (freePolicy) CanBrowsePlaylist() bool           { return false }
func (freePolicy) CanAccessFavourites() bool         { return false }
func (freePolicy) AddPoints(current float64) float64 { return current + 5 }

type premiumBasePolicy struct{}

func (premiumBasePolicy) Plan() domain.Plan                 { return domain.PlanPremiumBase }
func (premiumBasePolicy) CanCreatePlaylist() bool           { return true }
func (premiumBasePolicy) CanBrowsePlaylist() bool           { return true }
func (premiumBasePolicy) CanAccessFavourites() bool         { return false }
func (premiumBasePolicy) AddPoints(current float64) float64 { return current + 10 }

type premiumTopPolicy struct{}

func (premiumTopPolicy) Plan() domain.Plan                 { return domain.PlanPremiumTop }
func (premiumTopPolicy) CanCreatePlaylist() bool           { return true }
func (premiumTopPolicy) CanBrowsePlaylist() bool           { return true }
func (premiumTopPolicy) CanAccessFavourites() bool         { return true }
func (premiumTopPolicy) AddPoints(current float64) float64 { return current * 1.025 }

var (
	free        Policy = freePolicy{}
	premiumBase Policy = premiumBasePolicy{}
	premiumTop  Policy = premiumTopPolicy{}
)

// For returns the policy for plan. Unknown plans get the Free policy.
func For(plan domain.Plan) Policy {
	switch plan {
	case domain.PlanPremiumBase:
		return premiumBase
	case domain.PlanPremiumTop:
		return premiumTop
	default:
		return free
	}
}

// Upgrade returns the balance after the one-time PremiumTop upgrade.
func Upgrade(points float64) float64 {
	return points + UpgradeBonus
}
