package engine

import (
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/sahilm/fuzzy"
	"golang.org/x/text/cases"
)

// searchColumns are the columns a search term is matched against.
var searchColumns = [...]string{ColMake, ColModel, ColVIN}

// matcher folds the term once and each candidate field per test.
// cases.Caser is stateful, so a matcher must stay on one goroutine.
type matcher struct {
	fold   cases.Caser
	needle string
	empty  bool
}

func newMatcher(term string) *matcher {
	fold := cases.Fold()
	return &matcher{fold: fold, needle: fold.String(term), empty: term == ""}
}

func (m *matcher) match(r Record) bool {
	if m.empty {
		return true
	}
	for _, col := range searchColumns {
		v, ok := r[col]
		if !ok {
			continue
		}
		if strings.Contains(m.fold.String(v), m.needle) {
			return true
		}
	}
	return false
}

// Matches reports whether term occurs, ignoring case, in the record's make,
// model or VIN prefix. The empty term matches every record.
//
// Both sides are compared after full Unicode case folding, which is looser
// than lowercasing: "strasse" matches "STRAßE".
func Matches(r Record, term string) bool {
	return newMatcher(term).match(r)
}

// Filter returns the records matching term, in their original order.
func Filter(records []Record, term string) []Record {
	m := newMatcher(term)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Select evaluates the search predicate over the dataset and returns the
// matching row positions.
func (d *Dataset) Select(term string) *roaring.Bitmap {
	sel := roaring.New()
	if d == nil {
		return sel
	}
	if term == "" {
		sel.AddRange(0, uint64(len(d.Records)))
		return sel
	}

	m := newMatcher(term)
	for i, r := range d.Records {
		if m.match(r) {
			sel.Add(uint32(i))
		}
	}
	return sel
}

// Rows materializes a selection. Bitmaps iterate in ascending order, so the
// result keeps dataset order.
func (d *Dataset) Rows(sel *roaring.Bitmap) []Record {
	if d == nil || sel == nil {
		return []Record{}
	}
	out := make([]Record, 0, sel.GetCardinality())
	it := sel.Iterator()
	for it.HasNext() {
		idx := int(it.Next())
		if idx >= len(d.Records) {
			break
		}
		out = append(out, d.Records[idx])
	}
	return out
}

// Suggest returns up to limit makes or models that fuzzily match term,
// best match first.
func (d *Dataset) Suggest(term string, limit int) []string {
	if d == nil || term == "" || len(d.vocabulary) == 0 {
		return nil
	}
	matches := fuzzy.Find(term, d.vocabulary)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}
