package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/messages"
	"github.com/zatekoja/placesreview/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/placesreview/pkg/errors"
)

// LoyaltyService keeps the points ledger and the badge derived from it.
// A user's cached LoyaltyPoints is recomputed from the ledger after every
// ledger write, so it cannot drift from the sum of transactions.
type LoyaltyService struct {
	ledger   *Collection[entities.LoyaltyTransaction, *entities.LoyaltyTransaction]
	users    *Collection[entities.User, *entities.User]
	notifier *NotificationService
	catalog  *messages.Catalog
	locks    *keyedMutex
	metrics  *observability.Metrics
}

// NewLoyaltyService creates a new loyalty service
func NewLoyaltyService(deps Deps, notifier *NotificationService) *LoyaltyService {
	deps = deps.withDefaults()
	return &LoyaltyService{
		ledger:   NewCollection[entities.LoyaltyTransaction](deps.Store, deps.Clock),
		users:    NewCollection[entities.User](deps.Store, deps.Clock),
		notifier: notifier,
		catalog:  deps.Catalog,
		locks:    deps.locks,
		metrics:  deps.Metrics,
	}
}

// Award credits points and notifies the user. Crossing one or more tier
// thresholds emits a single badge notification naming the tier reached.
func (s *LoyaltyService) Award(ctx context.Context, userID string, points int, description string) (*entities.LoyaltyTransaction, error) {
	if points <= 0 {
		return nil, apperrors.NewValidationError("points to award must be positive")
	}

	unlock := s.locks.Lock("loyalty:" + userID)
	defer unlock()

	before, err := s.balanceLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	tx, err := s.ledger.Create(ctx, &entities.LoyaltyTransaction{
		UserID:      userID,
		Points:      points,
		Type:        entities.TransactionEarned,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	after, err := s.refreshUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	observability.RecordLoyalty(ctx, s.metrics, points)

	corr := entities.Correlation{ActionURL: "/profile/loyalty"}
	s.notifier.notifyBestEffort(ctx, userID, entities.NotificationLoyalty, messages.Vars{
		"points":      strconv.Itoa(points),
		"description": description,
		"total":       strconv.Itoa(after),
	}, corr)

	oldTier, newTier := entities.BadgeForPoints(before), entities.BadgeForPoints(after)
	if tierRank(newTier) > tierRank(oldTier) {
		observability.LoggerFromContext(ctx).Info().
			Str("user_id", userID).
			Str("from", string(oldTier)).
			Str("to", string(newTier)).
			Msg("badge tier reached")
		s.notifier.notifyBestEffort(ctx, userID, entities.NotificationBadge, messages.Vars{
			"badge": s.catalog.BadgeName(newTier),
			"total": strconv.Itoa(after),
		}, corr)
	}
	return tx, nil
}

// Redeem debits points. It fails with INSUFFICIENT_POINTS, leaving the
// ledger unchanged, when the balance would go negative.
func (s *LoyaltyService) Redeem(ctx context.Context, userID string, points int, description string) (*entities.LoyaltyTransaction, error) {
	if points <= 0 {
		return nil, apperrors.NewValidationError("points to redeem must be positive")
	}

	unlock := s.locks.Lock("loyalty:" + userID)
	defer unlock()

	balance, err := s.balanceLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < points {
		return nil, apperrors.NewInsufficientPointsError(balance, points)
	}

	tx, err := s.ledger.Create(ctx, &entities.LoyaltyTransaction{
		UserID:      userID,
		Points:      -points,
		Type:        entities.TransactionRedeemed,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.refreshUser(ctx, userID); err != nil {
		return nil, err
	}
	observability.RecordLoyalty(ctx, s.metrics, -points)
	return tx, nil
}

// Balance is the ledger sum of the user
func (s *LoyaltyService) Balance(ctx context.Context, userID string) (int, error) {
	return s.balanceLocked(ctx, userID)
}

func (s *LoyaltyService) balanceLocked(ctx context.Context, userID string) (int, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return 0, err
	}
	txs, err := s.ledger.ListBy(ctx, "userId", userID, nil)
	if err != nil {
		return 0, err
	}
	return entities.LedgerBalance(txs), nil
}

// History returns the user's transactions, newest first
func (s *LoyaltyService) History(ctx context.Context, userID string) ([]*entities.LoyaltyTransaction, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	txs, err := s.ledger.ListBy(ctx, "userId", userID, nil)
	if err != nil {
		return nil, err
	}
	return newestFirst(txs), nil
}

// Summary describes a user's standing
type Summary struct {
	Points       int                `json:"points"`
	Badge        entities.BadgeTier `json:"badge"`
	DisplayBadge entities.BadgeTier `json:"displayBadge"`
	NextBadge    entities.BadgeTier `json:"nextBadge,omitempty"`
	PointsToNext int                `json:"pointsToNext,omitempty"`
	Transactions int                `json:"transactions"`
}

// Summary reports balance, tier and progress to the next tier
func (s *LoyaltyService) Summary(ctx context.Context, userID string) (*Summary, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.ledger.ListBy(ctx, "userId", userID, nil)
	if err != nil {
		return nil, err
	}
	points := entities.LedgerBalance(txs)
	user.LoyaltyPoints = points

	summary := &Summary{
		Points:       points,
		Badge:        entities.BadgeForPoints(points),
		DisplayBadge: user.DisplayBadge(),
		Transactions: len(txs),
	}
	if next, missing, ok := entities.NextTier(points); ok {
		summary.NextBadge = next
		summary.PointsToNext = missing
	}
	return summary, nil
}

// refreshUser writes the ledger total and tier onto the user record.
func (s *LoyaltyService) refreshUser(ctx context.Context, userID string) (int, error) {
	txs, err := s.ledger.ListBy(ctx, "userId", userID, nil)
	if err != nil {
		return 0, err
	}
	total := entities.LedgerBalance(txs)
	if total < 0 {
		return 0, apperrors.NewInternalError(fmt.Sprintf("ledger of %s sums to %d", userID, total), nil)
	}

	_, err = s.users.Update(ctx, userID, func(u *entities.User) error {
		if u.LoyaltyPoints == total && u.LoyaltyBadge == entities.BadgeForPoints(total) {
			return errUnchanged
		}
		u.LoyaltyPoints = total
		u.LoyaltyBadge = entities.BadgeForPoints(total)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func tierRank(tier entities.BadgeTier) int {
	for i, t := range entities.PointTiers() {
		if t == tier {
			return i
		}
	}
	return -1
}
