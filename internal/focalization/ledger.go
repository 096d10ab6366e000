// Package focalization turns the flat list of transversal-policy allocations
// into the ordered ledger the final document prints: entry rows grouped by
// policy and category, with synthetic subtotal rows closing each group.
package focalization

import (
	"github.com/oagudelo/mgadoc/internal/content"
	"github.com/oagudelo/mgadoc/internal/money"
)

// Entry is one allocation as the generator emits it.
type Entry struct {
	Policy      string
	Category    string
	Subcategory string
	Value       money.Amount
}

// RowKind discriminates ledger rows.
type RowKind int

const (
	KindEntry RowKind = iota
	KindCategoryTotal
	KindPolicyTotal
)

// Row is one printable ledger line. Total rows keep the Policy/Category keys
// of the group they close, so the merged policy and category cells extend
// over them; the renderer supplies the total labels.
type Row struct {
	Kind        RowKind
	Policy      string
	Category    string
	Subcategory string
	Value       money.Amount
}

// Ledger is the ordered row list plus the grand total across policies.
type Ledger struct {
	Rows  []Row
	Total money.Amount
}

// FromContent reads the "focalizacion" list out of the merged stage content.
// Entries with an empty policy are kept under "Sin política" rather than
// dropped, so every allocation the model produced stays visible.
func FromContent(merged content.Record) []Entry {
	var entries []Entry
	for _, rec := range merged.List("focalizacion") {
		e := Entry{
			Policy:      rec.StrOr("politica", "Sin política"),
			Category:    rec.Str("categoria"),
			Subcategory: rec.StrOr("subcategoria", rec.Str("detalle")),
			Value:       rec.Money("valor"),
		}
		entries = append(entries, e)
	}
	return entries
}

// Build walks the entries once, in the order received, and closes a category
// group whenever the category or policy changes and the policy group whenever
// the policy changes. Input order is authoritative: entries are never sorted,
// and an interleaved group reopening produces a second pair of totals rather
// than a merge with the first.
func Build(entries []Entry) *Ledger {
	l := &Ledger{}
	if len(entries) == 0 {
		return l
	}

	var (
		curPolicy   = entries[0].Policy
		curCategory = entries[0].Category
		catSum      money.Amount
		polSum      money.Amount
	)

	closeCategory := func() {
		l.Rows = append(l.Rows, Row{
			Kind:     KindCategoryTotal,
			Policy:   curPolicy,
			Category: curCategory,
			Value:    catSum,
		})
		catSum = 0
	}
	closePolicy := func() {
		l.Rows = append(l.Rows, Row{
			Kind:   KindPolicyTotal,
			Policy: curPolicy,
			Value:  polSum,
		})
		polSum = 0
	}

	for _, e := range entries {
		if e.Policy != curPolicy {
			closeCategory()
			closePolicy()
			curPolicy, curCategory = e.Policy, e.Category
		} else if e.Category != curCategory {
			closeCategory()
			curCategory = e.Category
		}
		l.Rows = append(l.Rows, Row{
			Kind:        KindEntry,
			Policy:      e.Policy,
			Category:    e.Category,
			Subcategory: e.Subcategory,
			Value:       e.Value,
		})
		catSum += e.Value
		polSum += e.Value
		l.Total += e.Value
	}
	closeCategory()
	closePolicy()
	return l
}

// Span marks a vertical run of rows sharing one cell value: the first row
// shows the value, the following Len-1 rows continue the merge. A Len of 1 is
// a plain cell, not a merge.
type Span struct {
	Start int
	Len   int
}

// PolicySpans computes merge runs for the policy column. All rows of one
// policy merge together, its closing total row included.
func (l *Ledger) PolicySpans() []Span {
	return spans(l.Rows, func(r Row) (string, bool) {
		return r.Policy, true
	})
}

// CategorySpans computes merge runs for the category column. Entry rows of
// one category merge with the category-total row that closes them; the
// policy-total row breaks the run, so a category repeated under the next
// policy starts fresh. The key carries the policy because the same category
// name can recur across policies.
func (l *Ledger) CategorySpans() []Span {
	return spans(l.Rows, func(r Row) (string, bool) {
		if r.Kind == KindPolicyTotal {
			return "", false
		}
		return r.Policy + "\x00" + r.Category, true
	})
}

// spans detects maximal runs of consecutive rows whose key matches. Rows the
// key function excludes always terminate the current run and form their own
// length-1 span.
func spans(rows []Row, key func(Row) (string, bool)) []Span {
	var out []Span
	i := 0
	for i < len(rows) {
		k, mergeable := key(rows[i])
		j := i + 1
		if mergeable {
			for j < len(rows) {
				k2, ok := key(rows[j])
				if !ok || k2 != k {
					break
				}
				j++
			}
		}
		out = append(out, Span{Start: i, Len: j - i})
		i = j
	}
	return out
}
