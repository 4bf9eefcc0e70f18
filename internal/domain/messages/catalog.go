// Package messages holds the localized copy the engine interpolates into:
// weekday names, place status lines, badge names and notification templates.
package messages

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zatekoja/placesreview/internal/domain/entities"
)

//go:embed default_ar.yaml
var defaultCatalogYAML []byte

// Template is the title and message copy of one notification type
type Template struct {
	Title   string `yaml:"title"`
	Message string `yaml:"message"`
}

// StatusCopy holds the place status lines
type StatusCopy struct {
	Open        string `yaml:"open"`
	Closed      string `yaml:"closed"`
	ClosingSoon string `yaml:"closing_soon"`
}

// Catalog is the copy of one locale
type Catalog struct {
	Locale        string                                 `yaml:"locale"`
	Days          map[string]string                      `yaml:"days"`
	Status        StatusCopy                             `yaml:"status"`
	Badges        map[entities.BadgeTier]string          `yaml:"badges"`
	Notifications map[entities.NotificationType]Template `yaml:"notifications"`
}

// Vars are the values substituted for {{name}} placeholders
type Vars map[string]string

var loadDefault = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded message catalog: %v", err))
	}
	return c
})

// Default returns the embedded Arabic catalog.
func Default() *Catalog {
	return loadDefault()
}

// Load reads a YAML catalog from path. Keys missing from the file fall back
// to the embedded default. An empty path yields the default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read message catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse message catalog %s: %w", path, err)
	}
	c.fillFrom(Default())
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Parse decodes a complete catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse message catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every weekday and notification type has copy.
func (c *Catalog) Validate() error {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if c.Days[englishDay(d)] == "" {
			return fmt.Errorf("message catalog %q has no name for %s", c.Locale, englishDay(d))
		}
	}
	for _, t := range entities.AllNotificationTypes() {
		tpl := c.Notifications[t]
		if tpl.Title == "" && tpl.Message == "" {
			return fmt.Errorf("message catalog %q has no template for %s", c.Locale, t)
		}
	}
	if c.Status.Open == "" || c.Status.Closed == "" || c.Status.ClosingSoon == "" {
		return fmt.Errorf("message catalog %q is missing status copy", c.Locale)
	}
	return nil
}

func (c *Catalog) fillFrom(base *Catalog) {
	if c.Locale == "" {
		c.Locale = base.Locale
	}
	if c.Days == nil {
		c.Days = make(map[string]string)
	}
	for k, v := range base.Days {
		if c.Days[k] == "" {
			c.Days[k] = v
		}
	}
	if c.Status.Open == "" {
		c.Status.Open = base.Status.Open
	}
	if c.Status.Closed == "" {
		c.Status.Closed = base.Status.Closed
	}
	if c.Status.ClosingSoon == "" {
		c.Status.ClosingSoon = base.Status.ClosingSoon
	}
	if c.Badges == nil {
		c.Badges = make(map[entities.BadgeTier]string)
	}
	for k, v := range base.Badges {
		if c.Badges[k] == "" {
			c.Badges[k] = v
		}
	}
	if c.Notifications == nil {
		c.Notifications = make(map[entities.NotificationType]Template)
	}
	for k, v := range base.Notifications {
		if _, ok := c.Notifications[k]; !ok {
			c.Notifications[k] = v
		}
	}
}

func englishDay(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// DayName returns the localized weekday name used as the hours key.
func (c *Catalog) DayName(d time.Weekday) string {
	if name := c.Days[englishDay(d)]; name != "" {
		return name
	}
	return englishDay(d)
}

// EnglishDayName returns the lowercase English weekday name.
func EnglishDayName(d time.Weekday) string {
	return englishDay(d)
}

// BadgeName returns the localized tier name.
func (c *Catalog) BadgeName(tier entities.BadgeTier) string {
	if name := c.Badges[tier]; name != "" {
		return name
	}
	return string(tier)
}

// Notification renders the title and message of a notification type.
func (c *Catalog) Notification(t entities.NotificationType, vars Vars) (string, string) {
	tpl := c.Notifications[t]
	return Render(tpl.Title, vars), Render(tpl.Message, vars)
}

// Render replaces {{name}} placeholders. Unknown placeholders are left as is.
func Render(template string, vars Vars) string {
	result := template
	for name, value := range vars {
		result = strings.ReplaceAll(result, "{{"+name+"}}", value)
	}
	return result
}
