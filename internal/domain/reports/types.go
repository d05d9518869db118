// Package reports provides the stock aggregator: derived, read-only
// views reconstructed from receipts and deliveries on every call.
// No materialized running total is trusted; the vouchers are the sole
// source of truth.
package reports

import (
	"time"

	"coldledger/internal/core/entity"
	"coldledger/internal/core/id"
	"coldledger/internal/core/types"
	"coldledger/internal/domain/stock"
)

// Scope selects what the aggregator sums over: a whole facility, or
// one depositor within it.
type Scope struct {
	FacilityID  id.ID
	DepositorID *id.ID
}

// ReceiptAggRow is one grouped (variety, size) row summed over receipt
// lines in scope.
type ReceiptAggRow struct {
	Variety stock.Variety `db:"variety"`
	Size    stock.BagSize `db:"bag_size"`
	Initial int64         `db:"initial_quantity"`
	Current int64         `db:"current_quantity"`
}

// DeliveryAggRow is one grouped (variety, size) row summed over
// delivery items in scope.
type DeliveryAggRow struct {
	Variety stock.Variety `db:"variety"`
	Size    stock.BagSize `db:"bag_size"`
	Removed int64         `db:"quantity_removed"`
}

// SizeSummary is the per-size slice of a variety's stock position.
type SizeSummary struct {
	Size    stock.BagSize `json:"size"`
	Initial int64         `json:"initialQuantity"`
	Current int64         `json:"currentQuantity"`
	Removed int64         `json:"quantityRemoved"`
}

// VarietySummary groups size summaries under one variety.
type VarietySummary struct {
	Variety stock.Variety `json:"variety"`
	Sizes   []SizeSummary `json:"sizes"`
}

// FacilitySummary is the facility dashboard figure set.
type FacilitySummary struct {
	FacilityID       id.ID            `json:"facilityId"`
	TotalCurrentBags int64            `json:"totalCurrentBags"`
	StorageCharges   types.Money      `json:"storageCharges"`
	Varieties        []VarietySummary `json:"varieties"`
}

// DepositorRank is one row of the top-depositors ranking.
type DepositorRank struct {
	DepositorID id.ID  `db:"depositor_id" json:"depositorId"`
	Name        string `db:"name" json:"name"`
	CurrentBags int64  `db:"current_bags" json:"currentBags"`
}

// DayBookEntry is one voucher row of the facility day-book, newest
// first across both voucher kinds.
type DayBookEntry struct {
	VoucherID     id.ID              `db:"voucher_id" json:"voucherId"`
	Kind          entity.VoucherKind `db:"voucher_kind" json:"voucherKind"`
	Number        int64              `db:"voucher_number" json:"voucherNumber"`
	DepositorID   id.ID              `db:"depositor_id" json:"depositorId"`
	DepositorName string             `db:"depositor_name" json:"depositorName"`
	Date          time.Time          `db:"date" json:"date"`
	TotalBags     int64              `db:"total_bags" json:"totalBags"`
}
