package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zatekoja/placesreview/internal/adapters/events"
	"github.com/zatekoja/placesreview/internal/application/services"
	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/testutil"
)

// fridayNoon is 2024-06-07 12:00 UTC.
var fridayNoon = time.Date(2024, time.June, 7, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ctx context.Context
	svc *services.Services
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bus := events.NewMemoryEventBus()
	t.Cleanup(func() { _ = bus.Close() })

	f := &fixture{ctx: context.Background(), now: fridayNoon}
	f.svc = services.New(services.Deps{
		Store: testutil.NewStore(t),
		Bus:   bus,
		Clock: func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) user(t *testing.T, name string) *entities.User {
	t.Helper()
	u, err := f.svc.Users.Create(f.ctx, &entities.User{Name: name})
	require.NoError(t, err)
	return u
}

func (f *fixture) place(t *testing.T, ownerID, name string) *entities.Place {
	t.Helper()
	p, err := f.svc.Places.Add(f.ctx, ownerID, &entities.Place{Name: name, Category: "cafe"})
	require.NoError(t, err)
	return p
}

func (f *fixture) notificationsOf(t *testing.T, userID string, typ entities.NotificationType) []*entities.Notification {
	t.Helper()
	all, err := f.svc.Notifications.GetAll(f.ctx, userID)
	require.NoError(t, err)
	var out []*entities.Notification
	for _, n := range all {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}
