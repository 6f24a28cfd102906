package core

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FranciscoH-alt/CSV-Excel-Cleaning-Tool/internal/table"
)

// MaxDate returns the latest date among values, ignoring nulls and non-dates.
// Returns null if there is none.
func MaxDate(values []table.Value) table.Value {
	best := table.Null()
	for _, v := range values {
		if v.Kind != table.KindDate {
			continue
		}
		if best.IsNull() || v.Date.After(best.Date) {
			best = v
		}
	}
	return best
}

// Sum adds the numeric values. Nulls are skipped; an empty or all-null
// group sums to 0.
func Sum(values []table.Value) table.Value {
	total := decimal.Zero
	for _, v := range values {
		if v.Kind == table.KindNumber {
			total = total.Add(v.Number)
		}
	}
	return table.Number(total)
}

// First returns the first non-null value in group order, or null.
func First(values []table.Value) table.Value {
	for _, v := range values {
		if !v.IsNull() {
			return v
		}
	}
	return table.Null()
}

// JoinDistinct returns a reducer joining the distinct non-empty strings of
// a group, sorted, with sep.
func JoinDistinct(sep string) Reducer {
	return func(values []table.Value) table.Value {
		seen := make(map[string]bool, len(values))
		parts := make([]string, 0, len(values))
		for _, v := range values {
			s := v.String()
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			parts = append(parts, s)
		}
		sort.Strings(parts)
		return table.Text(strings.Join(parts, sep))
	}
}

// groupKey identifies a group. Both parts are non-null text after validation.
type groupKey struct {
	name  string
	email string
}

// groupBy folds rows sharing (keyA, keyB) into one row per group. Output
// rows hold the two key columns plus one column per aggregation and are
// sorted by key. Rows are visited in input order, so order-sensitive reducers
// see each group's values in the order the rows appeared.
func groupBy(rows []table.Row, keyA, keyB string, aggs []Aggregation) []table.Row {
	index := make(map[groupKey]int)
	var members [][]table.Row

	for _, r := range rows {
		k := groupKey{name: r.Get(keyA).String(), email: r.Get(keyB).String()}
		i, ok := index[k]
		if !ok {
			i = len(members)
			index[k] = i
			members = append(members, nil)
		}
		members[i] = append(members[i], r)
	}

	out := make([]table.Row, len(members))
	for i, group := range members {
		row := make(table.Row, 2+len(aggs))
		row[keyA] = group[0].Get(keyA)
		row[keyB] = group[0].Get(keyB)
		for _, agg := range aggs {
			values := make([]table.Value, len(group))
			for j, r := range group {
				values[j] = r.Get(agg.Column)
			}
			row[agg.Column] = agg.Reduce(values)
		}
		out[i] = row
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if an, bn := a.Get(keyA).String(), b.Get(keyA).String(); an != bn {
			return an < bn
		}
		return a.Get(keyB).String() < b.Get(keyB).String()
	})

	return out
}
