package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

func day(y int, m time.Month, d int) table.Value {
	return table.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func num(s string) table.Value {
	return table.Number(decimal.RequireFromString(s))
}

// ---- Reducer Tests ----

func TestMaxDate(t *testing.T) {
	got := MaxDate([]table.Value{day(2023, 1, 1), table.Null(), day(2023, 6, 1), day(2022, 12, 31)})
	assert.True(t, got.Equal(day(2023, 6, 1)), "got %v", got)

	assert.True(t, MaxDate(nil).IsNull())
	assert.True(t, MaxDate([]table.Value{table.Null(), table.Text("x")}).IsNull())
}

func TestSum(t *testing.T) {
	tests := []struct {
		name   string
		values []table.Value
		want   string
	}{
		{name: "adds numbers", values: []table.Value{num("100"), num("50")}, want: "150"},
		{name: "skips nulls", values: []table.Value{num("10"), table.Null(), num("2.5")}, want: "12.5"},
		{name: "all null is zero", values: []table.Value{table.Null(), table.Null()}, want: "0"},
		{name: "empty is zero", values: nil, want: "0"},
		{name: "exact decimals", values: []table.Value{num("0.1"), num("0.2")}, want: "0.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sum(tt.values)
			require.Equal(t, table.KindNumber, got.Kind)
			assert.True(t, got.Number.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestFirst(t *testing.T) {
	got := First([]table.Value{table.Null(), table.Text("West"), table.Text("East")})
	assert.Equal(t, "West", got.String())

	assert.True(t, First([]table.Value{table.Null()}).IsNull())
}

func TestJoinDistinct(t *testing.T) {
	join := JoinDistinct("; ")

	tests := []struct {
		name   string
		values []table.Value
		want   string
	}{
		{name: "dedupes and sorts", values: []table.Value{table.Text("b"), table.Text("a"), table.Text("b")}, want: "a; b"},
		{name: "drops empty", values: []table.Value{table.Text(""), table.Text("x"), table.Null()}, want: "x"},
		{name: "nothing", values: []table.Value{table.Text("")}, want: ""},
		{name: "case sensitive", values: []table.Value{table.Text("a"), table.Text("B")}, want: "B; a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, join(tt.values).Equal(table.Text(tt.want)), "got %q", join(tt.values).String())
		})
	}
}

// ---- groupBy Tests ----

func TestGroupBy(t *testing.T) {
	rows := []table.Row{
		{"name": table.Text("Bob"), "email": table.Text("b@x.com"), "amt": num("1"), "tag": table.Text("first")},
		{"name": table.Text("Alice"), "email": table.Text("a@x.com"), "amt": num("2"), "tag": table.Null()},
		{"name": table.Text("Bob"), "email": table.Text("b@x.com"), "amt": num("3"), "tag": table.Text("second")},
		{"name": table.Text("Alice"), "email": table.Text("a@x.com"), "amt": num("4"), "tag": table.Text("later")},
		{"name": table.Text("Alice"), "email": table.Text("other@x.com"), "amt": num("5"), "extra": table.Text("dropped")},
	}
	aggs := []Aggregation{
		{Column: "amt", Reduce: Sum},
		{Column: "tag", Reduce: First},
	}

	out := groupBy(rows, "name", "email", aggs)
	require.Len(t, out, 3)

	assert.Equal(t, "Alice", out[0]["name"].String())
	assert.Equal(t, "a@x.com", out[0]["email"].String())
	assert.Equal(t, "6", out[0]["amt"].String())
	assert.Equal(t, "later", out[0]["tag"].String())

	assert.Equal(t, "other@x.com", out[1]["email"].String())
	assert.True(t, out[1]["tag"].IsNull())
	_, hasExtra := out[1]["extra"]
	assert.False(t, hasExtra, "columns without an aggregation are dropped")

	assert.Equal(t, "Bob", out[2]["name"].String())
	assert.Equal(t, "4", out[2]["amt"].String())
	assert.Equal(t, "first", out[2]["tag"].String(), "first follows input order")
}

func TestGroupBy_Empty(t *testing.T) {
	assert.Empty(t, groupBy(nil, "a", "b", nil))
}
