package entities

import "time"

// Kind names a persisted collection.
type Kind string

const (
	KindPlace              Kind = "places"
	KindReview             Kind = "reviews"
	KindUser               Kind = "users"
	KindQuestion           Kind = "questions"
	KindNotification       Kind = "notifications"
	KindAnnouncement       Kind = "announcements"
	KindInquiry            Kind = "inquiries"
	KindSubscription       Kind = "subscriptions"
	KindLoyaltyTransaction Kind = "loyaltyTransactions"
)

// AllKinds lists every entity collection in a stable order.
func AllKinds() []Kind {
	return []Kind{
		KindPlace,
		KindReview,
		KindUser,
		KindQuestion,
		KindNotification,
		KindAnnouncement,
		KindInquiry,
		KindSubscription,
		KindLoyaltyTransaction,
	}
}

// Table returns the SQL table backing the collection.
func (k Kind) Table() string {
	if k == KindLoyaltyTransaction {
		return "loyalty_transactions"
	}
	return string(k)
}

// Valid reports whether k is a known collection.
func (k Kind) Valid() bool {
	for _, known := range AllKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Meta carries the store-assigned identity of an entity.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetMeta gives the store access to identity fields.
func (m *Meta) GetMeta() *Meta {
	return m
}

// Entity is implemented by every stored record.
type Entity interface {
	GetMeta() *Meta
	Kind() Kind
	Validate() error
}
