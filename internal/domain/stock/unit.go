// Package stock provides the stock unit model: the (variety, bag size)
// quantity line that receipts add and deliveries draw down.
//
// Variety and BagSize are canonicalized value types. Grouping in the
// aggregator and line matching in the delivery ledger operate on exact
// string equality, so every name is normalized once at the boundary
// instead of ad hoc at call sites.
package stock

import (
	"strings"
	"unicode"

	"coldledger/internal/core/apperror"
)

// Variety is a canonical crop variety name ("Pukhraj", "Kufri-jyoti").
type Variety string

// BagSize is a canonical bag size name ("Goli", "Number-12", "Cut-tok").
type BagSize string

// NewVariety canonicalizes a raw variety name.
// Returns ValidationError when the name is empty after trimming.
func NewVariety(raw string) (Variety, error) {
	s, err := canonicalize(raw)
	if err != nil {
		return "", apperror.NewValidation("variety is required").
			WithDetail("field", "variety")
	}
	return Variety(s), nil
}

// NewBagSize canonicalizes a raw bag size name.
// Returns ValidationError when the name is empty after trimming.
func NewBagSize(raw string) (BagSize, error) {
	s, err := canonicalize(raw)
	if err != nil {
		return "", apperror.NewValidation("bag size is required").
			WithDetail("field", "size")
	}
	return BagSize(s), nil
}

// canonicalize lower-cases the name, collapses internal whitespace runs
// to a single hyphen and upper-cases the first letter.
func canonicalize(raw string) (string, error) {
	fields := strings.Fields(strings.ToLower(raw))
	if len(fields) == 0 {
		return "", errEmptyName
	}

	s := strings.Join(fields, "-")
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes), nil
}

var errEmptyName = apperror.NewValidation("name is empty")

// Line is a StockLine: the atomic unit of inventory on a receipt.
//
// Invariant: 0 <= Current <= Initial at all times once persisted;
// violated only transiently inside an uncommitted transaction.
type Line struct {
	Variety Variety `db:"variety" json:"variety"`
	Size    BagSize `db:"bag_size" json:"size"`

	// Initial is the bag count recorded at receipt creation.
	Initial int64 `db:"initial_quantity" json:"initialQuantity"`

	// Current is the bag count still in storage.
	Current int64 `db:"current_quantity" json:"currentQuantity"`
}

// Empty reports whether the line holds no stock at all.
// Empty lines must not be persisted; they are filtered at creation.
func (l Line) Empty() bool {
	return l.Initial == 0 && l.Current == 0
}

// Validate checks the line invariants.
func (l Line) Validate() error {
	if l.Variety == "" {
		return apperror.NewValidation("variety is required").
			WithDetail("field", "variety")
	}
	if l.Size == "" {
		return apperror.NewValidation("bag size is required").
			WithDetail("field", "size")
	}
	if l.Initial < 0 || l.Current < 0 {
		return apperror.NewValidation("negative quantities are not allowed").
			WithDetail("variety", string(l.Variety)).
			WithDetail("size", string(l.Size))
	}
	if l.Current > l.Initial {
		return apperror.NewValidation("current quantity exceeds initial quantity").
			WithDetail("variety", string(l.Variety)).
			WithDetail("size", string(l.Size)).
			WithDetail("initial", l.Initial).
			WithDetail("current", l.Current)
	}
	return nil
}

// NormalizeLines canonicalizes names, drops empty lines and validates
// the rest. Fails when every line is empty: a receipt must add stock.
func NormalizeLines(lines []Line) ([]Line, error) {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		v, err := NewVariety(string(l.Variety))
		if err != nil {
			return nil, err
		}
		s, err := NewBagSize(string(l.Size))
		if err != nil {
			return nil, err
		}
		l.Variety = v
		l.Size = s

		if err := l.Validate(); err != nil {
			return nil, err
		}
		if l.Empty() {
			continue
		}
		out = append(out, l)
	}

	if len(out) == 0 {
		return nil, apperror.NewValidation("at least one stock line must have a non-zero quantity").
			WithDetail("field", "stockLines")
	}
	return out, nil
}

// TotalCurrent sums the current quantities across lines.
func TotalCurrent(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.Current
	}
	return total
}

// Location pins a receipt's produce inside the facility.
type Location struct {
	Floor   string `db:"floor" json:"floor"`
	Row     string `db:"row" json:"row"`
	Chamber string `db:"chamber" json:"chamber"`
}

// Validate checks that every coordinate is present.
func (loc Location) Validate() error {
	if loc.Floor == "" || loc.Row == "" || loc.Chamber == "" {
		return apperror.NewValidation("storage location requires floor, row and chamber").
			WithDetail("field", "location")
	}
	return nil
}
