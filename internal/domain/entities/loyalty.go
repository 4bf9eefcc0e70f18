package entities

import (
	"strings"

	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// BadgeTier is a reputation level shown next to a user.
type BadgeTier string

const (
	BadgeBronze   BadgeTier = "bronze"
	BadgeSilver   BadgeTier = "silver"
	BadgeGold     BadgeTier = "gold"
	BadgePlatinum BadgeTier = "platinum"
	BadgeDiamond  BadgeTier = "diamond"

	// BadgeExpert is granted by expert-reviewer qualification, never by points.
	BadgeExpert BadgeTier = "expert"
)

// badgeThresholds holds the lower bound of each points tier, ascending.
var badgeThresholds = []struct {
	min  int
	tier BadgeTier
}{
	{0, BadgeBronze},
	{100, BadgeSilver},
	{300, BadgeGold},
	{600, BadgePlatinum},
	{1000, BadgeDiamond},
}

// PointTiers lists the points-derived tiers from lowest to highest.
func PointTiers() []BadgeTier {
	tiers := make([]BadgeTier, len(badgeThresholds))
	for i, t := range badgeThresholds {
		tiers[i] = t.tier
	}
	return tiers
}

// BadgeForPoints maps a points total to its tier. Negative totals are treated as zero.
func BadgeForPoints(points int) BadgeTier {
	tier := BadgeBronze
	for _, t := range badgeThresholds {
		if points >= t.min {
			tier = t.tier
		}
	}
	return tier
}

// TierThreshold returns the minimum points of a points-derived tier.
func TierThreshold(tier BadgeTier) (int, bool) {
	for _, t := range badgeThresholds {
		if t.tier == tier {
			return t.min, true
		}
	}
	return 0, false
}

// NextTier returns the tier after the one reached with points and the points still
// missing, or ok=false at the top tier.
func NextTier(points int) (next BadgeTier, missing int, ok bool) {
	for _, t := range badgeThresholds {
		if points < t.min {
			return t.tier, t.min - points, true
		}
	}
	return "", 0, false
}

// TransactionType tells whether points were earned or spent.
type TransactionType string

const (
	TransactionEarned   TransactionType = "earned"
	TransactionRedeemed TransactionType = "redeemed"
)

// LoyaltyTransaction is one append-only entry of a user's points ledger.
// Points is signed: positive when earned, negative when redeemed.
type LoyaltyTransaction struct {
	Meta
	UserID      string          `json:"userId"`
	Points      int             `json:"points"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
}

// Kind implements Entity
func (t *LoyaltyTransaction) Kind() Kind { return KindLoyaltyTransaction }

// Validate implements Entity
func (t *LoyaltyTransaction) Validate() error {
	if t.UserID == "" {
		return apperrors.NewValidationError("transaction user is required")
	}
	switch t.Type {
	case TransactionEarned:
		if t.Points <= 0 {
			return apperrors.NewValidationError("earned points must be positive")
		}
	case TransactionRedeemed:
		if t.Points >= 0 {
			return apperrors.NewValidationError("redeemed points must be negative")
		}
	default:
		return apperrors.NewValidationError("unknown transaction type " + string(t.Type))
	}
	if strings.TrimSpace(t.Description) == "" {
		return apperrors.NewValidationError("transaction description is required")
	}
	return nil
}

// LedgerBalance sums a ledger.
func LedgerBalance(txs []*LoyaltyTransaction) int {
	total := 0
	for _, tx := range txs {
		total += tx.Points
	}
	return total
}
