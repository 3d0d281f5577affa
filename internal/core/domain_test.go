package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, 2, 1), d)
	assert.Equal(t, "2024-02-01", d.String())

	for _, bad := range []string{"", "2024-13-01", "01/02/2024", "2024-02-30"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, "input %q", bad)
	}
}

func TestDateOfDropsTimeOfDay(t *testing.T) {
	d := DateOf(time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, NewDate(2024, 3, 9), d)
}

func TestParseStatus(t *testing.T) {
	for _, in := range []string{"pending", "Approved", " REJECTED "} {
		_, err := ParseStatus(in)
		assert.NoError(t, err, in)
	}
	_, err := ParseStatus("all")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestNewExpenseValidate(t *testing.T) {
	meals := DefaultCategories()[2]
	good := NewExpense{
		Title:    "Lunch",
		Amount:   FromRupees(500),
		Category: meals,
		Date:     NewDate(2024, 2, 1),
	}
	require.NoError(t, good.Validate())

	zeroAmount := good
	zeroAmount.Amount = Money{}
	assert.NoError(t, zeroAmount.Validate(), "zero amounts are allowed")

	devanagari := good
	devanagari.Title = strings.Repeat("खर्च", 50)
	require.Len(t, []rune(devanagari.Title), 200)
	assert.NoError(t, devanagari.Validate(), "title length counts characters, not bytes")

	largest := good
	largest.Amount = Money{Cents: MaxAmountCents}
	assert.NoError(t, largest.Validate())

	cases := []struct {
		name   string
		mutate func(*NewExpense)
		want   error
	}{
		{"zero date", func(e *NewExpense) { e.Date = Date{} }, ErrInvalidDate},
		{"blank title", func(e *NewExpense) { e.Title = "   " }, ErrEmptyTitle},
		{"long title", func(e *NewExpense) { e.Title = strings.Repeat("x", 201) }, ErrTitleTooLong},
		{"long multibyte title", func(e *NewExpense) { e.Title = strings.Repeat("खर्च", 50) + "x" }, ErrTitleTooLong},
		{"amount above cap", func(e *NewExpense) { e.Amount = Money{Cents: MaxAmountCents + 1} }, ErrInvalidAmount},
		{"negative amount", func(e *NewExpense) { e.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"unresolved category", func(e *NewExpense) { e.Category = Category{} }, ErrUnknownCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := good
			tc.mutate(&e)
			assert.ErrorIs(t, e.Validate(), tc.want)
		})
	}
}

func TestBuildForcesPending(t *testing.T) {
	e := NewExpense{Title: "Lunch", Amount: FromRupees(500), Category: DefaultCategories()[2], Date: NewDate(2024, 2, 1)}.Build("abc")
	assert.Equal(t, "abc", e.ID)
	assert.Equal(t, StatusPending, e.Status)
	assert.Equal(t, "Meals", e.Category.Name)
}

func TestNewIDIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestSeedExpenses(t *testing.T) {
	cats := DefaultCategories()
	require.Len(t, cats, 6)
	seed := SeedExpenses(cats)
	require.Len(t, seed, 3)
	assert.Equal(t, "Office Supplies", seed[0].Category.Name)
	assert.Equal(t, "Travel", seed[1].Category.Name)
	assert.Equal(t, "Meals", seed[2].Category.Name)
}
