package messages_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/placesreview/internal/domain/entities"
	"github.com/zatekoja/placesreview/internal/domain/messages"
)

func TestDefault_CoversEveryType(t *testing.T) {
	c := messages.Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "ar", c.Locale)

	for _, typ := range entities.AllNotificationTypes() {
		title, message := c.Notification(typ, messages.Vars{})
		assert.True(t, title != "" || message != "", string(typ))
	}
	for _, tier := range append(entities.PointTiers(), entities.BadgeExpert) {
		assert.NotEqual(t, string(tier), c.BadgeName(tier), "badge %s has no localized name", tier)
	}
}

func TestDayName(t *testing.T) {
	c := messages.Default()
	assert.Equal(t, "الجمعة", c.DayName(time.Friday))
	assert.Equal(t, "friday", messages.EnglishDayName(time.Friday))
}

func TestRender(t *testing.T) {
	got := messages.Render("يغلق خلال {{minutes}} دقيقة", messages.Vars{"minutes": "15"})
	assert.Equal(t, "يغلق خلال 15 دقيقة", got)

	assert.Equal(t, "hello {{who}}", messages.Render("hello {{who}}", nil))
}

func TestLoad_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en.yaml")
	content := `
locale: en
days:
  friday: Friday
status:
  closing_soon: "Closes in {{minutes}} min"
notifications:
  badge:
    title: New badge
    message: "You reached {{badge}}"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := messages.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "en", c.Locale)
	assert.Equal(t, "Friday", c.DayName(time.Friday))
	assert.Equal(t, "السبت", c.DayName(time.Saturday))
	assert.Equal(t, "Closes in {{minutes}} min", c.Status.ClosingSoon)
	assert.Equal(t, messages.Default().Status.Open, c.Status.Open)

	title, message := c.Notification(entities.NotificationBadge, messages.Vars{"badge": "gold"})
	assert.Equal(t, "New badge", title)
	assert.Equal(t, "You reached gold", message)
}

func TestLoad_Errors(t *testing.T) {
	_, err := messages.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("days: [oops"), 0o644))
	_, err = messages.Load(bad)
	assert.Error(t, err)

	c, err := messages.Load("")
	require.NoError(t, err)
	assert.Same(t, messages.Default(), c)
}
