package engine

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

// Unknown is the bucket for records with no value in the counted column.
const Unknown = "Unknown"

// Result holds the distinct values of one field and how often each occurs.
// Labels and Series are aligned by position.
type Result struct {
	Field  Field
	Labels []string
	Series []int
}

// Total is the number of records counted.
func (r Result) Total() int {
	n := 0
	for _, c := range r.Series {
		n += c
	}
	return n
}

// CountBy groups records by field. Every record lands in exactly one bucket,
// empty values in Unknown. Labels appear in first-seen order, except model
// years which are sorted with numeric years first, ascending, then everything
// else in first-seen order.
func CountBy(records []Record, field Field) (Result, error) {
	if !field.Valid() {
		return Result{}, &InvalidFieldError{Field: field.String()}
	}
	return countBy(records, field), nil
}

// CountAll runs CountBy for every dimension, in Dimensions order.
func CountAll(records []Record) []Result {
	out := make([]Result, len(Dimensions))
	for i, f := range Dimensions {
		out[i] = countBy(records, f)
	}
	return out
}

func countBy(records []Record, field Field) Result {
	col := field.Column()
	res := Result{Field: field, Labels: []string{}, Series: []int{}}
	index := make(map[string]int)

	for _, r := range records {
		key := r[col]
		if key == "" {
			key = Unknown
		}
		if i, ok := index[key]; ok {
			res.Series[i]++
			continue
		}
		index[key] = len(res.Labels)
		res.Labels = append(res.Labels, key)
		res.Series = append(res.Series, 1)
	}

	if field == ModelYear {
		sortYears(&res)
	}
	return res
}

// --- MODEL YEAR ORDERING ---

type yearKey struct {
	pos     int
	year    int
	numeric bool
}

// compareYears puts numeric years before anything else. Non-numeric labels
// compare equal so the stable sort keeps them in first-seen order.
func compareYears(a, b yearKey) int {
	switch {
	case a.numeric && b.numeric:
		return cmp.Compare(a.year, b.year)
	case a.numeric:
		return -1
	case b.numeric:
		return 1
	default:
		return 0
	}
}

func sortYears(res *Result) {
	keys := make([]yearKey, len(res.Labels))
	for i, label := range res.Labels {
		y, err := strconv.Atoi(strings.TrimSpace(label))
		keys[i] = yearKey{pos: i, year: y, numeric: err == nil}
	}
	slices.SortStableFunc(keys, compareYears)

	labels := make([]string, len(keys))
	series := make([]int, len(keys))
	for i, k := range keys {
		labels[i] = res.Labels[k.pos]
		series[i] = res.Series[k.pos]
	}
	res.Labels, res.Series = labels, series
}
