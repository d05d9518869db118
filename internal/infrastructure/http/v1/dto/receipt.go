package dto

import (
	"time"

	"coldledger/internal/core/id"
	"coldledger/internal/domain/documents/receipt"
	"coldledger/internal/domain/stock"
)

// StockLineRequest is one (variety, size, quantity) line of a receipt.
// Names are canonicalized by the domain layer; quantities count bags.
type StockLineRequest struct {
	Variety  string `json:"variety" binding:"required"`
	Size     string `json:"size" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required,gte=0"`
}

// LocationRequest pins the produce inside the facility.
type LocationRequest struct {
	Floor   string `json:"floor" binding:"required"`
	Row     string `json:"row" binding:"required"`
	Chamber string `json:"chamber" binding:"required"`
}

func (r LocationRequest) toLocation() stock.Location {
	return stock.Location{Floor: r.Floor, Row: r.Row, Chamber: r.Chamber}
}

// CreateReceiptRequest represents a request to record an incoming order.
type CreateReceiptRequest struct {
	DepositorID string             `json:"depositorId" binding:"required"`
	Date        *time.Time         `json:"date,omitempty"`
	Remarks     string             `json:"remarks,omitempty"`
	Location    LocationRequest    `json:"location" binding:"required"`
	StockLines  []StockLineRequest `json:"stockLines" binding:"required,min=1,dive"`
}

// ToInput converts the request to service input.
func (r *CreateReceiptRequest) ToInput() (receipt.CreateInput, error) {
	depositorID, err := id.Parse(r.DepositorID)
	if err != nil {
		return receipt.CreateInput{}, err
	}

	in := receipt.CreateInput{
		DepositorID: depositorID,
		Location:    r.Location.toLocation(),
		Remarks:     r.Remarks,
		Lines:       toStockLines(r.StockLines),
	}
	if r.Date != nil {
		in.Date = *r.Date
	}
	return in, nil
}

// UpdateStockLineRequest is one line of a receipt edit. Unlike
// creation, where current stock starts equal to initial, an edit must
// state both quantities: the lines replace the stored table part
// wholesale and the remaining stock cannot be inferred.
type UpdateStockLineRequest struct {
	Variety         string `json:"variety" binding:"required"`
	Size            string `json:"size" binding:"required"`
	InitialQuantity *int64 `json:"initialQuantity" binding:"required,gte=0"`
	CurrentQuantity *int64 `json:"currentQuantity" binding:"required,gte=0"`
}

// UpdateReceiptRequest represents a partial receipt edit. Nil fields
// are left untouched; a non-nil StockLines replaces the table part.
type UpdateReceiptRequest struct {
	Date       *time.Time               `json:"date,omitempty"`
	Remarks    *string                  `json:"remarks,omitempty"`
	Fulfilled  *bool                    `json:"fulfilled,omitempty"`
	Location   *LocationRequest         `json:"location,omitempty"`
	StockLines []UpdateStockLineRequest `json:"stockLines,omitempty" binding:"omitempty,dive"`
}

// ToInput converts the request to service input.
func (r *UpdateReceiptRequest) ToInput() receipt.EditInput {
	in := receipt.EditInput{
		Date:      r.Date,
		Remarks:   r.Remarks,
		Fulfilled: r.Fulfilled,
	}
	if r.Location != nil {
		loc := r.Location.toLocation()
		in.Location = &loc
	}
	if r.StockLines != nil {
		lines := make([]stock.Line, 0, len(r.StockLines))
		for _, l := range r.StockLines {
			lines = append(lines, stock.Line{
				Variety: stock.Variety(l.Variety),
				Size:    stock.BagSize(l.Size),
				Initial: *l.InitialQuantity,
				Current: *l.CurrentQuantity,
			})
		}
		in.Lines = lines
	}
	return in
}

func toStockLines(reqs []StockLineRequest) []stock.Line {
	lines := make([]stock.Line, 0, len(reqs))
	for _, l := range reqs {
		lines = append(lines, stock.Line{
			Variety: stock.Variety(l.Variety),
			Size:    stock.BagSize(l.Size),
			Initial: l.Quantity,
		})
	}
	return lines
}

// ReceiptListQuery contains receipt list filters.
type ReceiptListQuery struct {
	ListQuery
	DateRangeQuery
	DepositorID *string `form:"depositorId"`
	Variety     *string `form:"variety"`
	Fulfilled   *bool   `form:"fulfilled"`
}

// ToFilter converts query parameters to a repository filter.
func (q *ReceiptListQuery) ToFilter() (receipt.ListFilter, error) {
	f := receipt.ListFilter{
		ListFilter: q.ListQuery.ToFilter(),
		Fulfilled:  q.Fulfilled,
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
	}
	if q.DepositorID != nil {
		depID, err := id.Parse(*q.DepositorID)
		if err != nil {
			return f, err
		}
		f.DepositorID = &depID
	}
	if q.Variety != nil {
		v, err := stock.NewVariety(*q.Variety)
		if err != nil {
			return f, err
		}
		f.Variety = &v
	}
	return f, nil
}
