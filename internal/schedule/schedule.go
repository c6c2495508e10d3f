package schedule

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/weekplan/internal/model"
	"gopkg.in/yaml.v3"
)

var (
	ErrDuplicateID = errors.New("schedule: duplicate task id")
	ErrEmpty       = errors.New("schedule: no days defined")
)

//go:embed week.yaml
var defaultWeek []byte

type Week struct {
	Number int
	Days   []model.Day
}

type weekDoc struct {
	Week int      `yaml:"week"`
	Days []dayDoc `yaml:"days"`
}

type dayDoc struct {
	Day   string    `yaml:"day"`
	Items []itemDoc `yaml:"items"`
}

type itemDoc struct {
	ID   string `yaml:"id"`
	Time string `yaml:"time"`
	Task string `yaml:"task"`
	Type string `yaml:"type"`
}

// Default returns the week compiled into the binary.
func Default() Week {
	w, err := Parse(defaultWeek)
	if err != nil {
		panic(fmt.Sprintf("embedded schedule is invalid: %v", err))
	}
	return w
}

func Parse(raw []byte) (Week, error) {
	var doc weekDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Week{}, fmt.Errorf("decode schedule: %w", err)
	}
	if len(doc.Days) == 0 {
		return Week{}, ErrEmpty
	}
	if doc.Week <= 0 {
		doc.Week = 1
	}

	seen := make(map[string]string)
	days := make([]model.Day, 0, len(doc.Days))
	for _, d := range doc.Days {
		name := strings.TrimSpace(d.Day)
		if name == "" {
			return Week{}, errors.New("schedule: day name is required")
		}
		items := make([]model.Template, 0, len(d.Items))
		for _, it := range d.Items {
			tpl := model.Template{
				ID:       strings.TrimSpace(it.ID),
				Time:     strings.TrimSpace(it.Time),
				Title:    strings.TrimSpace(it.Task),
				Category: model.Category(strings.ToLower(strings.TrimSpace(it.Type))),
			}
			if err := tpl.Validate(); err != nil {
				return Week{}, fmt.Errorf("schedule %s: %w", name, err)
			}
			if prev, ok := seen[tpl.ID]; ok {
				return Week{}, fmt.Errorf("%w: %q on %s and %s", ErrDuplicateID, tpl.ID, prev, name)
			}
			seen[tpl.ID] = name
			items = append(items, tpl)
		}
		days = append(days, model.Day{Name: name, Items: items})
	}
	return Week{Number: doc.Week, Days: days}, nil
}

func (w Week) Templates() []model.Template {
	out := make([]model.Template, 0)
	for _, d := range w.Days {
		out = append(out, d.Items...)
	}
	return out
}

func (w Week) Lookup(id string) (model.Template, string, bool) {
	for _, d := range w.Days {
		for _, tpl := range d.Items {
			if tpl.ID == id {
				return tpl, d.Name, true
			}
		}
	}
	return model.Template{}, "", false
}

func (w Week) DayNames() []string {
	out := make([]string, 0, len(w.Days))
	for _, d := range w.Days {
		out = append(out, d.Name)
	}
	return out
}
