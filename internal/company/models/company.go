// Package models defines the core domain models for the Company entity.
// It includes definitions for Company, CompanyUpdate and CompanyFilter.
package models

import (
	"strings"
	"time"
)

// DefaultIndustry is assigned when a record is created or updated with a
// blank industry.
const DefaultIndustry = "General"

// Company defines the domain model for a company record.
type Company struct {
	// ID is the store-assigned identifier. It never changes after creation.
	ID string `json:"id"`
	// Name is the company’s name.
	Name string `json:"name" validate:"required"`
	// Industry is the business category of the company.
	Industry string `json:"industry"`
	// Location is where the company is based.
	Location string `json:"location" validate:"required,notblank"`
	// Size is the number of employees, if known.
	Size *int `json:"size,omitempty" validate:"omitempty,min=1"`
	// Founded is the founding year, if known.
	Founded *int `json:"founded,omitempty" validate:"omitempty,min=1900,notfuture"`
	// CreatedAt records the timestamp when the company was created.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt records the timestamp when the company was last updated.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Normalize trims the name and fills in the default industry.
func (c *Company) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Industry = strings.TrimSpace(c.Industry)
	if c.Industry == "" {
		c.Industry = DefaultIndustry
	}
}

// CompanyUpdate represents the fields that can be updated for a Company.
// Pointer types are used to allow partial updates.
type CompanyUpdate struct {
	// ID is the identifier of the company to update.
	ID string
	// Name is the new name for the company.
	Name *string
	// Industry is the new industry.
	Industry *string
	// Location is the new location.
	Location *string
	// Size is the new employee count.
	Size *int
	// Founded is the new founding year.
	Founded *int
}

// Empty reports whether the update carries no fields.
func (u *CompanyUpdate) Empty() bool {
	return u.Name == nil && u.Industry == nil && u.Location == nil && u.Size == nil && u.Founded == nil
}

// Apply merges the supplied fields of u into a copy of c.
func (u *CompanyUpdate) Apply(c Company) Company {
	if u.Name != nil {
		c.Name = strings.TrimSpace(*u.Name)
	}
	if u.Industry != nil {
		c.Industry = strings.TrimSpace(*u.Industry)
		if c.Industry == "" {
			c.Industry = DefaultIndustry
		}
	}
	if u.Location != nil {
		c.Location = *u.Location
	}
	if u.Size != nil {
		size := *u.Size
		c.Size = &size
	}
	if u.Founded != nil {
		founded := *u.Founded
		c.Founded = &founded
	}
	return c
}

// CompanyFilter narrows a listing. Zero values mean "no constraint".
type CompanyFilter struct {
	// Search is matched case-insensitively as a substring of name,
	// industry or location.
	Search string
	// MinSize is the inclusive lower bound on Size.
	MinSize *int
	// MaxSize is the inclusive upper bound on Size.
	MaxSize *int
}

// HasSizeBounds reports whether either size bound is set.
func (f CompanyFilter) HasSizeBounds() bool {
	return f.MinSize != nil || f.MaxSize != nil
}
