package assistant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Year(t *testing.T) {
	a := newAssistant()

	tests := []struct {
		question string
		want     int
	}{
		{"what did I plant last year", 2024},
		{"¿Qué sembré el año pasado?", 2024},
		{"this year", 2025},
		{"este año cuantas veces", 2025},
		{"harvest in 2023", 2023},
		{"harvest in 1900 or 2100", 1900},
		{"harvest in 3000", 0},
		{"harvest in 1899", 0},
		{"harvest 12345", 0},
		{"harvest", 0},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Parse(tt.question).Year)
		})
	}
}

func TestParse_YearRange(t *testing.T) {
	q := newAssistant().Parse("logs from 2023")
	require.NotNil(t, q.Range)
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), q.Range.Start)
	assert.Equal(t, time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC), q.Range.End)
}

func TestParse_Weeks(t *testing.T) {
	a := newAssistant()

	q := a.Parse("what did I do last week")
	require.NotNil(t, q.Range)
	assert.Equal(t, now.AddDate(0, 0, -7), q.Range.Start)
	assert.Equal(t, now, q.Range.End)

	q = a.Parse("las últimas 3 semanas")
	require.NotNil(t, q.Range)
	assert.Equal(t, now.AddDate(0, 0, -21), q.Range.Start)

	// weeks win over an explicit year
	q = a.Parse("the past 2 weeks of 2024")
	require.NotNil(t, q.Range)
	assert.Equal(t, 2024, q.Year)
	assert.Equal(t, now.AddDate(0, 0, -14), q.Range.Start)
}

func TestParse_ThisMonth(t *testing.T) {
	q := newAssistant().Parse("¿Qué hice este mes?")
	require.NotNil(t, q.Range)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), q.Range.Start)
	assert.True(t, q.Range.Contains(time.Date(2025, time.June, 30, 23, 59, 59, 999, time.UTC)))
	assert.False(t, q.Range.Contains(time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, q.Range.Contains(time.Date(2025, time.May, 31, 23, 59, 59, 0, time.UTC)))
}

func TestParse_NoRange(t *testing.T) {
	q := newAssistant().Parse("when did I water the lemon tree")
	assert.Nil(t, q.Range)
	assert.Equal(t, []string{"riego", "arbol", "limon"}, q.TagIDs)
	assert.Equal(t, "when did i water the lemon tree", q.Normalized)
}

func TestParse_Intent(t *testing.T) {
	a := newAssistant()

	tests := []struct {
		question string
		want     Intent
	}{
		{"Which trees did I plant?", IntentListTrees},
		{"¿Qué árboles tengo?", IntentListTrees},
		{"how many trees did I plant", IntentCountTrees},
		{"how many times did I prune the trees", IntentCountTrees},
		{"¿Cuántas plantas sembré?", IntentCountPlants},
		{"how many times did I water", IntentCountOccurrences},
		{"¿Cuántas veces regué?", IntentCountOccurrences},
		{"Did I water the lemon tree?", IntentYesNo},
		{"when was the last time I watered", IntentLatest},
		{"lemon", IntentLatest},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Parse(tt.question).Intent)
		})
	}
}

func TestParse_LastTime(t *testing.T) {
	a := newAssistant()
	assert.True(t, a.Parse("When was the last time I pruned?").LastTime)
	assert.True(t, a.Parse("¿Cuándo fue la última vez?").LastTime)
	assert.False(t, a.Parse("last week").LastTime)
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "list-trees", IntentListTrees.String())
	assert.Equal(t, "count-occurrences", IntentCountOccurrences.String())
	assert.Equal(t, "latest", IntentLatest.String())
}

func TestParse_WeekMarkersMustBeAdjacent(t *testing.T) {
	a := newAssistant()

	tests := []struct {
		question string
		weeks    int
	}{
		{"last week", 1},
		{"past 2 weeks", 2},
		{"la semana pasada", 1},
		{"las 3 semanas pasadas", 3},
		{"últimas 4 semanas", 4},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			q := a.Parse(tt.question)
			require.NotNil(t, q.Range)
			assert.Equal(t, now.AddDate(0, 0, -7*tt.weeks), q.Range.Start)
		})
	}

	for _, question := range []string{
		"When was the last time I harvested, a week ago or more",
		"last time I pruned was one week",
		"week 3 of the last harvest",
	} {
		assert.Nil(t, a.Parse(question).Range, question)
	}
}

func TestParse_HugeWeekCountIsBounded(t *testing.T) {
	a := newAssistant()

	for _, question := range []string{
		"last 9000000000000000 weeks",
		"last 99999999999999999999999 weeks",
	} {
		q := a.Parse(question)
		require.NotNil(t, q.Range, question)
		assert.Equal(t, now.AddDate(0, 0, -7*maxWeeks), q.Range.Start, question)
		assert.True(t, q.Range.Start.Before(now))
	}
}
