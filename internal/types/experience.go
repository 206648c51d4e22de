package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Company is the employer a role belongs to
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Role is a position held at a company
type Role struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Specialty string  `json:"specialty,omitempty"`
	Company   Company `json:"company"`
	StartDate *Date   `json:"startDate,omitempty"`
	EndDate   *Date   `json:"endDate,omitempty"`
	IsCurrent bool    `json:"isCurrent"`
}

// Key returns the "Company - Role" grouping key used for bullet generation
func (r Role) Key() string {
	return fmt.Sprintf("%s - %s", r.Company.Name, r.Title)
}

// DurationMonths returns the whole months spent in the role, counting a current role up to now.
// Roles without a start date report zero.
func (r Role) DurationMonths(now time.Time) int {
	if r.StartDate == nil || r.StartDate.IsZero() {
		return 0
	}
	end := now
	if !r.IsCurrent && r.EndDate != nil && !r.EndDate.IsZero() {
		end = r.EndDate.Time
	}
	months := (end.Year()-r.StartDate.Year())*12 + int(end.Month()) - int(r.StartDate.Month())
	if months < 0 {
		return 0
	}
	return months
}

// Experience is one recorded accomplishment within a role.
// It is read-only input to the analyzer.
type Experience struct {
	ID        string   `json:"id"`
	Role      Role     `json:"role"`
	Title     string   `json:"title"`
	Situation *string  `json:"situation,omitempty"`
	Task      *string  `json:"task,omitempty"`
	Action    string   `json:"action"`
	Result    string   `json:"result"`
	Tags      []string `json:"tags,omitempty"`
}

// Education is a school record. Degree may be empty when the user never filled it in.
type Education struct {
	ID        string `json:"id"`
	School    string `json:"school"`
	Degree    string `json:"degree,omitempty"`
	Field     string `json:"field,omitempty"`
	StartDate *Date  `json:"startDate,omitempty"`
	EndDate   *Date  `json:"endDate,omitempty"`
}

// Date is a calendar date serialized as YYYY-MM-DD (YYYY-MM is accepted on input)
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC
func NewDate(year int, month time.Month, day int) *Date {
	return &Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD or YYYY-MM
func ParseDate(s string) (*Date, error) {
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &Date{Time: t}, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or YYYY-MM", s)
}

// String formats the date as YYYY-MM-DD, or "" when unset
func (d *Date) String() string {
	if d == nil || d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

// MarshalJSON implements json.Marshaler
func (d *Date) MarshalJSON() ([]byte, error) {
	if d == nil || d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format("2006-01-02"))
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		if string(data) == "null" {
			return nil
		}
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed.Time
	return nil
}

// ExperienceBank is the import format for seeding a local store
type ExperienceBank struct {
	UserID      string       `json:"userId"`
	Experiences []Experience `json:"experiences"`
	Education   []Education  `json:"education"`
}

// RoleGroup is the experiences recorded under one "Company - Role" key
type RoleGroup struct {
	Key         string
	Role        Role
	Experiences []Experience
}

// GroupByRole groups experiences by role key, keeping the order in which roles first appear
func GroupByRole(experiences []Experience) []RoleGroup {
	var groups []RoleGroup
	index := make(map[string]int)
	for _, exp := range experiences {
		key := exp.Role.Key()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, RoleGroup{Key: key, Role: exp.Role})
		}
		groups[i].Experiences = append(groups[i].Experiences, exp)
	}
	return groups
}
