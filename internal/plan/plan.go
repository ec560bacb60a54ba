// Package plan reads the YAML plan document and builds the fresh row list a
// sheet starts from.
//
// A plan names the visible day window, the project sections with their
// subprojects and slot counts, the number of inbox slots and the daily
// minute bounds. Row ids produced from it are deterministic, so a persisted
// snapshot merges back onto a rebuilt sheet by id.
package plan

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alexanderramin/plansheet/internal/rowid"
	"gopkg.in/yaml.v3"
)

// DateLayout is the layout of Plan.Start.
const DateLayout = "2006-01-02"

const (
	DefaultDays = 14
	MaxDays     = 366
)

// ErrInvalidPlan is wrapped by every validation failure.
var ErrInvalidPlan = errors.New("invalid plan")

// Plan is the plan document.
type Plan struct {
	// Start is the first day column, as YYYY-MM-DD.
	Start string `yaml:"start"`

	// Days is the number of day columns. Zero means DefaultDays.
	Days int `yaml:"days"`

	// Daily holds the target minutes per day drawn as the dailyMin and
	// dailyMax timeline rows.
	Daily Bounds `yaml:"daily,omitempty"`

	Projects []Project `yaml:"projects,omitempty"`

	// Inbox is the number of inbox slots.
	Inbox int `yaml:"inbox,omitempty"`
}

// Bounds is a minute range. Zero means unbounded.
type Bounds struct {
	Min int `yaml:"min,omitempty"`
	Max int `yaml:"max,omitempty"`
}

// BoundState places a daily total relative to Bounds.
type BoundState int

const (
	Within BoundState = iota
	Under
	Over
)

// Classify places minutes against the bounds. A zero bound is not checked.
func (b Bounds) Classify(minutes int) BoundState {
	switch {
	case b.Max > 0 && minutes > b.Max:
		return Over
	case b.Min > 0 && minutes < b.Min:
		return Under
	}
	return Within
}

// Project is one project section.
type Project struct {
	Key         string       `yaml:"key"`
	Name        string       `yaml:"name,omitempty"`
	Slots       int          `yaml:"slots"`
	Subprojects []Subproject `yaml:"subprojects,omitempty"`
}

// Subproject is a section nested in a project.
type Subproject struct {
	Key   string `yaml:"key"`
	Name  string `yaml:"name,omitempty"`
	Slots int    `yaml:"slots"`
}

// Load reads and validates the plan at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a plan document.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	if p.Days == 0 {
		p.Days = DefaultDays
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Default returns a one-project plan starting today.
func Default(today time.Time) *Plan {
	return &Plan{
		Start: today.Format(DateLayout),
		Days:  DefaultDays,
		Projects: []Project{
			{Key: "personal", Name: "Personal", Slots: 3},
		},
		Inbox: 3,
	}
}

// Validate checks the document for values the builder cannot place.
func (p *Plan) Validate() error {
	if _, err := time.Parse(DateLayout, p.Start); err != nil {
		return fmt.Errorf("%w: start %q is not a %s date", ErrInvalidPlan, p.Start, DateLayout)
	}
	if p.Days < 1 || p.Days > MaxDays {
		return fmt.Errorf("%w: days must be between 1 and %d, got %d", ErrInvalidPlan, MaxDays, p.Days)
	}
	if p.Daily.Min < 0 || p.Daily.Max < 0 {
		return fmt.Errorf("%w: daily bounds must not be negative", ErrInvalidPlan)
	}
	if p.Daily.Max > 0 && p.Daily.Min > p.Daily.Max {
		return fmt.Errorf("%w: daily min %d exceeds max %d", ErrInvalidPlan, p.Daily.Min, p.Daily.Max)
	}
	if p.Inbox < 0 {
		return fmt.Errorf("%w: inbox slots must not be negative", ErrInvalidPlan)
	}

	seen := make(map[string]bool, len(p.Projects))
	for _, pr := range p.Projects {
		if !rowid.ValidKey(pr.Key) {
			return fmt.Errorf("%w: project key %q", ErrInvalidPlan, pr.Key)
		}
		if seen[pr.Key] {
			return fmt.Errorf("%w: duplicate project %q", ErrInvalidPlan, pr.Key)
		}
		seen[pr.Key] = true
		if pr.Slots < 0 {
			return fmt.Errorf("%w: project %q has negative slots", ErrInvalidPlan, pr.Key)
		}
		subs := make(map[string]bool, len(pr.Subprojects))
		for _, s := range pr.Subprojects {
			if !rowid.ValidKey(s.Key) {
				return fmt.Errorf("%w: subproject key %q in %q", ErrInvalidPlan, s.Key, pr.Key)
			}
			if subs[s.Key] {
				return fmt.Errorf("%w: duplicate subproject %q in %q", ErrInvalidPlan, s.Key, pr.Key)
			}
			subs[s.Key] = true
			if s.Slots < 0 {
				return fmt.Errorf("%w: subproject %q has negative slots", ErrInvalidPlan, s.Key)
			}
		}
	}
	return nil
}

// StartDate returns the parsed start date. It is only meaningful on a
// validated plan.
func (p *Plan) StartDate() time.Time {
	t, _ := time.Parse(DateLayout, p.Start)
	return t
}

// Marshal encodes the plan as YAML.
func (p *Plan) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}

// WeekKey returns the ISO week key used for archive sections, e.g.
// "2026-W42".
func WeekKey(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", y, w)
}

// ParseWeekKey parses a key in the WeekKey form. Week 53 is accepted only
// for ISO years that have one.
func ParseWeekKey(key string) (year, week int, err error) {
	if len(key) != 8 || key[4] != '-' || key[5] != 'W' || !digits(key[:4]) || !digits(key[6:]) {
		return 0, 0, fmt.Errorf("invalid archive week %q: expected YYYY-Www", key)
	}
	year, _ = strconv.Atoi(key[:4])
	week, _ = strconv.Atoi(key[6:])
	_, last := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	if week < 1 || week > last {
		return 0, 0, fmt.Errorf("invalid archive week %q: %d has weeks 01 to %02d", key, year, last)
	}
	return year, week, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
