package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeImportance(t *testing.T) {
	tests := []struct {
		in   Importance
		want Importance
	}{
		{"critical", ImportanceCritical},
		{"Absolute", ImportanceCritical},
		{" HIGH ", ImportanceHigh},
		{"low", ImportanceLow},
		{"urgent", "urgent"},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeImportance(tt.in))
		})
	}
	assert.False(t, Importance("urgent").Valid())
}

func TestCategory_Valid(t *testing.T) {
	for _, c := range AllCategories() {
		assert.True(t, c.Valid(), c)
	}
	assert.False(t, Category("hobby").Valid())
}

func TestAnalyzeRequest_Mode(t *testing.T) {
	assert.Equal(t, MatchModeFlexible, (&AnalyzeRequest{}).Mode())
	assert.Equal(t, MatchModeExact, (&AnalyzeRequest{KeywordMatchType: MatchModeExact}).Mode())
}

func TestAnalyzeRequest_Validate(t *testing.T) {
	valid := strings.Repeat("Design and operate reliable distributed systems in Go. ", 10)

	assert.NoError(t, (&AnalyzeRequest{JobDescription: valid}).Validate())
	assert.Error(t, (&AnalyzeRequest{JobDescription: valid, KeywordMatchType: "fuzzy"}).Validate())
	assert.Error(t, (&AnalyzeRequest{JobDescription: strings.Repeat("x", 450)}).Validate(), "one word is too few")
}

func TestDate_JSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2021-06-15"`), &d))
	assert.Equal(t, "2021-06-15", d.String())

	require.NoError(t, json.Unmarshal([]byte(`"2019-03"`), &d))
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 2019, d.Year())

	assert.Error(t, json.Unmarshal([]byte(`"March 2019"`), &d))

	out, err := json.Marshal(NewDate(2020, time.January, 2))
	require.NoError(t, err)
	assert.Equal(t, `"2020-01-02"`, string(out))
}

func TestRole_DurationMonths(t *testing.T) {
	now := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	past := Role{StartDate: NewDate(2019, time.January, 1), EndDate: NewDate(2021, time.June, 1)}
	assert.Equal(t, 29, past.DurationMonths(now))

	current := Role{StartDate: NewDate(2022, time.July, 1), IsCurrent: true, EndDate: NewDate(2023, time.January, 1)}
	assert.Equal(t, 24, current.DurationMonths(now), "current roles run until now")

	assert.Equal(t, 0, Role{}.DurationMonths(now))
}

func TestGroupByRole(t *testing.T) {
	acme := Role{ID: "r1", Title: "Engineer", Company: Company{Name: "Acme"}}
	beta := Role{ID: "r2", Title: "Lead", Company: Company{Name: "Beta"}}
	exps := []Experience{
		{ID: "e1", Role: beta},
		{ID: "e2", Role: acme},
		{ID: "e3", Role: beta},
	}

	groups := GroupByRole(exps)

	require.Len(t, groups, 2)
	assert.Equal(t, "Beta - Lead", groups[0].Key)
	assert.Len(t, groups[0].Experiences, 2)
	assert.Equal(t, "Acme - Engineer", groups[1].Key)
	assert.Empty(t, GroupByRole(nil))
}
