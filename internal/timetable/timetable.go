// Package timetable serves the static two-week class schedule.
//
// The schedule document has two top-level week variants, first_week and
// second_week, each mapping weekday names (Monday..Friday, in that order) to
// an ordered list of lesson slots. A slot maps labels to text. The document
// may be JSON or YAML; key order is preserved throughout.
package timetable

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	keyFirstWeek  = "first_week"
	keySecondWeek = "second_week"

	schoolDays = 5
)

// Parity says which of the two alternating week tables applies.
type Parity int

const (
	ParityFirst Parity = iota
	ParitySecond
)

func (p Parity) String() string {
	if p == ParityFirst {
		return keyFirstWeek
	}
	return keySecondWeek
}

// Field is one label/text pair of a lesson slot.
type Field struct {
	Label string
	Text  string
}

// Lesson is one slot of a day, fields in document order.
type Lesson struct {
	Fields []Field
}

// Day is one weekday of a week table.
type Day struct {
	Name    string
	Lessons []Lesson
}

// Schedule is the answer for a single date. When Weekend is set Day is empty.
type Schedule struct {
	Date    time.Time
	Parity  Parity
	Weekend bool
	Day     Day
}

// Store holds both week tables. It is immutable after loading and safe for
// concurrent use.
type Store struct {
	weeks [2][]Day
	loc   *time.Location
}

// Load reads and parses the schedule document at path.
func Load(path string, loc *time.Location) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timetable %q: %w", path, err)
	}
	s, err := Parse(data, loc)
	if err != nil {
		return nil, fmt.Errorf("parse timetable %q: %w", path, err)
	}
	return s, nil
}

// Parse builds a Store from a JSON or YAML document. Dates passed to the
// store are interpreted in loc (UTC when nil).
func Parse(data []byte, loc *time.Location) (*Store, error) {
	if loc == nil {
		loc = time.UTC
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level must be a mapping, got %s", kindName(root))
	}

	s := &Store{loc: loc}
	for i, key := range []string{keyFirstWeek, keySecondWeek} {
		node := mappingValue(root, key)
		if node == nil {
			return nil, fmt.Errorf("missing %q", key)
		}
		days, err := parseWeek(node)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		s.weeks[i] = days
	}
	return s, nil
}

func parseWeek(node *yaml.Node) ([]Day, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("week must be a mapping of weekdays, got %s", kindName(node))
	}
	if len(node.Content)/2 < schoolDays {
		return nil, fmt.Errorf("expected %d weekdays, got %d", schoolDays, len(node.Content)/2)
	}

	days := make([]Day, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, slots := node.Content[i].Value, node.Content[i+1]
		day := Day{Name: name}

		switch slots.Kind {
		case yaml.SequenceNode:
		case yaml.ScalarNode:
			if slots.Tag == "!!null" {
				days = append(days, day)
				continue
			}
			fallthrough
		default:
			return nil, fmt.Errorf("%s: lessons must be a list, got %s", name, kindName(slots))
		}

		for n, slot := range slots.Content {
			lesson, err := parseLesson(slot)
			if err != nil {
				return nil, fmt.Errorf("%s: slot %d: %w", name, n+1, err)
			}
			day.Lessons = append(day.Lessons, lesson)
		}
		days = append(days, day)
	}
	return days, nil
}

func parseLesson(node *yaml.Node) (Lesson, error) {
	if node.Kind != yaml.MappingNode {
		return Lesson{}, fmt.Errorf("slot must be a mapping, got %s", kindName(node))
	}
	var l Lesson
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return Lesson{}, fmt.Errorf("field %q must be a scalar, got %s", k.Value, kindName(v))
		}
		l.Fields = append(l.Fields, Field{Label: k.Value, Text: v.Value})
	}
	return l, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

// Location returns the time zone dates are evaluated in.
func (s *Store) Location() *time.Location {
	return s.loc
}

// WeekNumber counts weeks from January 1st with weeks starting on Sunday:
// ceil((days since Jan 1 + weekday of Jan 1 + 1) / 7).
func WeekNumber(date time.Time) int {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	jan1 := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(jan1).Hours() / 24)
	return (days + int(jan1.Weekday()) + 1 + 6) / 7
}

// ParityOf maps even week numbers to the first-week table and odd ones to
// the second-week table.
func ParityOf(date time.Time) Parity {
	if WeekNumber(date)%2 == 0 {
		return ParityFirst
	}
	return ParitySecond
}

// Parity is ParityOf evaluated in the store's time zone.
func (s *Store) Parity(date time.Time) Parity {
	return ParityOf(date.In(s.loc))
}

// ScheduleFor returns the lessons for date. Saturdays and Sundays are
// Weekend regardless of parity; Monday..Friday map to the week table's
// first five days.
func (s *Store) ScheduleFor(date time.Time) Schedule {
	local := date.In(s.loc)
	sched := Schedule{Date: local, Parity: ParityOf(local)}

	wd := local.Weekday()
	if wd == time.Sunday || wd == time.Saturday {
		sched.Weekend = true
		return sched
	}

	sched.Day = s.weeks[sched.Parity][int(wd)-1]
	return sched
}

// Render formats a schedule for a chat reply. Slots are numbered from 1 and
// their fields keep document order.
func Render(s Schedule, weekendText string) string {
	if s.Weekend {
		return weekendText
	}

	var sb strings.Builder
	sb.WriteString(s.Day.Name)
	for i, l := range s.Day.Lessons {
		sb.WriteString(fmt.Sprintf("\n\n%d.", i+1))
		for _, f := range l.Fields {
			sb.WriteString("\n")
			sb.WriteString(f.Label)
			sb.WriteString(": ")
			sb.WriteString(f.Text)
		}
	}
	return sb.String()
}
