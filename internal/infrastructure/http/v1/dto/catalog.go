package dto

import (
	"coldledger/internal/core/types"
	"coldledger/internal/domain/catalogs/depositor"
	"coldledger/internal/domain/catalogs/facility"
)

// --- Facility ---

// CreateFacilityRequest for registering a cold-storage facility.
type CreateFacilityRequest struct {
	Code          string   `json:"code" binding:"required"`
	Name          string   `json:"name" binding:"required"`
	Address       string   `json:"address" binding:"required"`
	ContactNumber string   `json:"contactNumber,omitempty"`
	Capacity      int64    `json:"capacity,omitempty"`
	CostPerBag    string   `json:"costPerBag,omitempty"`
	BagSizes      []string `json:"bagSizes,omitempty"`
}

// ToEntity converts the request to a domain facility.
func (r *CreateFacilityRequest) ToEntity() (*facility.Facility, error) {
	f := facility.New(r.Code, r.Name, r.Address)
	f.ContactNumber = r.ContactNumber
	f.Capacity = r.Capacity
	f.BagSizes = r.BagSizes

	if r.CostPerBag != "" {
		rate, err := types.MoneyFromString(r.CostPerBag)
		if err != nil {
			return nil, err
		}
		f.CostPerBag = rate
	}
	return f, nil
}

// UpdateFacilityRequest for partial facility edits.
type UpdateFacilityRequest struct {
	Name          *string  `json:"name,omitempty"`
	Address       *string  `json:"address,omitempty"`
	ContactNumber *string  `json:"contactNumber,omitempty"`
	Capacity      *int64   `json:"capacity,omitempty"`
	CostPerBag    *string  `json:"costPerBag,omitempty"`
	BagSizes      []string `json:"bagSizes,omitempty"`
	IsActive      *bool    `json:"isActive,omitempty"`
}

// ApplyTo applies the edit to an existing facility.
func (r *UpdateFacilityRequest) ApplyTo(f *facility.Facility) error {
	if r.Name != nil {
		f.Name = *r.Name
	}
	if r.Address != nil {
		f.Address = *r.Address
	}
	if r.ContactNumber != nil {
		f.ContactNumber = *r.ContactNumber
	}
	if r.Capacity != nil {
		f.Capacity = *r.Capacity
	}
	if r.CostPerBag != nil {
		rate, err := types.MoneyFromString(*r.CostPerBag)
		if err != nil {
			return err
		}
		f.CostPerBag = rate
	}
	if r.BagSizes != nil {
		f.BagSizes = r.BagSizes
	}
	if r.IsActive != nil {
		f.IsActive = *r.IsActive
	}
	return nil
}

// --- Depositor ---

// CreateDepositorRequest for registering a farmer.
type CreateDepositorRequest struct {
	Code         string `json:"code" binding:"required"`
	Name         string `json:"name" binding:"required"`
	MobileNumber string `json:"mobileNumber" binding:"required"`
	Address      string `json:"address,omitempty"`
}

// ToEntity converts the request to a domain depositor.
func (r *CreateDepositorRequest) ToEntity() *depositor.Depositor {
	d := depositor.New(r.Code, r.Name, r.MobileNumber)
	d.Address = r.Address
	return d
}

// UpdateDepositorRequest for partial depositor edits.
type UpdateDepositorRequest struct {
	Name         *string `json:"name,omitempty"`
	MobileNumber *string `json:"mobileNumber,omitempty"`
	Address      *string `json:"address,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// ApplyTo applies the edit to an existing depositor.
func (r *UpdateDepositorRequest) ApplyTo(d *depositor.Depositor) {
	if r.Name != nil {
		d.Name = *r.Name
	}
	if r.MobileNumber != nil {
		d.MobileNumber = *r.MobileNumber
	}
	if r.Address != nil {
		d.Address = *r.Address
	}
	if r.IsActive != nil {
		d.IsActive = *r.IsActive
	}
}
