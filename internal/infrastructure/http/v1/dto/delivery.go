package dto

import (
	"time"

	"coldledger/internal/core/id"
	"coldledger/internal/domain/documents/delivery"
)

// DeliveryLineRequest names the receipt stock to draw down.
type DeliveryLineRequest struct {
	SourceReceiptID string `json:"sourceReceiptId" binding:"required"`
	Variety         string `json:"variety" binding:"required"`
	Size            string `json:"size" binding:"required"`
	Quantity        int64  `json:"quantity" binding:"required,gt=0"`
}

// CreateDeliveryRequest represents a request to record an outgoing order.
type CreateDeliveryRequest struct {
	DepositorID string                `json:"depositorId" binding:"required"`
	Date        *time.Time            `json:"date,omitempty"`
	Remarks     string                `json:"remarks,omitempty"`
	LineItems   []DeliveryLineRequest `json:"lineItems" binding:"required,min=1,dive"`
}

// ToInput converts the request to service input.
func (r *CreateDeliveryRequest) ToInput() (delivery.CreateInput, error) {
	depositorID, err := id.Parse(r.DepositorID)
	if err != nil {
		return delivery.CreateInput{}, err
	}

	lines, err := toDeliveryLines(r.LineItems)
	if err != nil {
		return delivery.CreateInput{}, err
	}

	in := delivery.CreateInput{
		DepositorID: depositorID,
		Lines:       lines,
		Remarks:     r.Remarks,
	}
	if r.Date != nil {
		in.Date = *r.Date
	}
	return in, nil
}

// UpdateDeliveryRequest replaces the delivery's line items and
// optionally its remarks.
type UpdateDeliveryRequest struct {
	Remarks   *string               `json:"remarks,omitempty"`
	LineItems []DeliveryLineRequest `json:"lineItems" binding:"required,min=1,dive"`
}

// ToLines converts the request to service line requests.
func (r *UpdateDeliveryRequest) ToLines() ([]delivery.LineRequest, error) {
	return toDeliveryLines(r.LineItems)
}

func toDeliveryLines(reqs []DeliveryLineRequest) ([]delivery.LineRequest, error) {
	lines := make([]delivery.LineRequest, 0, len(reqs))
	for _, l := range reqs {
		receiptID, err := id.Parse(l.SourceReceiptID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, delivery.LineRequest{
			ReceiptID: receiptID,
			Variety:   l.Variety,
			Size:      l.Size,
			Quantity:  l.Quantity,
		})
	}
	return lines, nil
}

// DeliveryListQuery contains delivery list filters.
type DeliveryListQuery struct {
	ListQuery
	DateRangeQuery
	DepositorID     *string `form:"depositorId"`
	SourceReceiptID *string `form:"sourceReceiptId"`
}

// ToFilter converts query parameters to a repository filter.
func (q *DeliveryListQuery) ToFilter() (delivery.ListFilter, error) {
	f := delivery.ListFilter{
		ListFilter: q.ListQuery.ToFilter(),
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
	if q.SourceReceiptID != nil {
		rid, err := id.Parse(*q.SourceReceiptID)
		if err != nil {
			return f, err
		}
		f.SourceReceiptID = &rid
	}
	return f, nil
}
