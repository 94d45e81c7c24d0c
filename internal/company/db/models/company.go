// Package models contains the persistence models for the relational
// backends, configured to work using GORM as the ORM.
package models

import (
	"time"

	domain "github.com/gartstein/companydir/internal/company/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company represents a company row. The primary key is a UUID assigned
// before insert; timestamps are maintained by GORM.
type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Industry  string    `gorm:"not null;default:General"`
	Location  string    `gorm:"not null"`
	Size      *int      `gorm:"check:size >= 1"`
	Founded   *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns the row id.
func (c *Company) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// FromDomain builds a row from a domain record, ignoring its id.
func FromDomain(c *domain.Company) *Company {
	return &Company{
		Name:     c.Name,
		Industry: c.Industry,
		Location: c.Location,
		Size:     c.Size,
		Founded:  c.Founded,
	}
}

// ToDomain converts the row into the domain record.
func (c *Company) ToDomain() *domain.Company {
	return &domain.Company{
		ID:        c.ID.String(),
		Name:      c.Name,
		Industry:  c.Industry,
		Location:  c.Location,
		Size:      c.Size,
		Founded:   c.Founded,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
