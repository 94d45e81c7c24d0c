// Package controller implements the core business logic (service layer)
// for managing Company records, orchestrating validation, repository
// operations and change events.
package controller

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/companydir/internal/company/errors"
	"github.com/gartstein/companydir/internal/company/events"
	"github.com/gartstein/companydir/internal/company/models"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(eventType events.EventType, company *models.Company)
}

// Repository defines the storage interface for Company objects.
type Repository interface {
	CreateCompany(ctx context.Context, company *models.Company) error
	ListCompanies(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error)
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error
	DeleteCompany(ctx context.Context, id string) error
}

// Validator checks a record before it is persisted.
type Validator interface {
	Company(c *models.Company) error
}

// CompanyService provides methods to manage companies via repository
// operations and event production.
type CompanyService struct {
	repo      Repository
	producer  EventProducer
	validator Validator
	logger    *zap.Logger
}

// NewCompanyService constructs a CompanyService.
func NewCompanyService(repo Repository, producer EventProducer, validator Validator, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		repo:      repo,
		producer:  producer,
		validator: validator,
		logger:    logger.Named("company_service"),
	}
}

// CreateCompany normalizes and validates the record, persists it and
// triggers an event. The store assigns the id and timestamps.
func (s *CompanyService) CreateCompany(ctx context.Context, company *models.Company) (*models.Company, error) {
	if company == nil {
		return nil, fmt.Errorf("%w: company data required", e.ErrInvalidInput)
	}
	company.Normalize()
	if err := s.validator.Company(company); err != nil {
		return nil, err
	}

	company.ID = ""
	if err := s.repo.CreateCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	go func() {
		s.producer.Produce(events.CompanyCreated, company)
	}()
	return company, nil
}

// ListCompanies returns the records matching filter in store order.
func (s *CompanyService) ListCompanies(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error) {
	companies, err := s.repo.ListCompanies(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// GetCompany retrieves a Company by ID, returning an error if not found.
func (s *CompanyService) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// UpdateCompany merges the supplied fields into the stored record,
// validates the result with the creation rules, writes the change and
// returns the stored version.
func (s *CompanyService) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) (*models.Company, error) {
	current, err := s.GetCompany(ctx, update.ID)
	if err != nil {
		return nil, err
	}

	merged := update.Apply(*current)
	if err := s.validator.Company(&merged); err != nil {
		return nil, err
	}
	if update.Name != nil {
		update.Name = &merged.Name
	}
	if update.Industry != nil {
		update.Industry = &merged.Industry
	}
	if update.Empty() {
		return current, nil
	}

	if err := s.repo.UpdateCompany(ctx, update); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}

	updated, err := s.repo.GetCompany(ctx, update.ID)
	if err != nil {
		s.logger.Error("Failed to reload updated company",
			zap.Error(err),
			zap.String("company_id", update.ID),
		)
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to reload company: %w", err)
	}
	go func() {
		s.producer.Produce(events.CompanyUpdated, updated)
	}()
	return updated, nil
}

// DeleteCompany removes a Company by ID and fires a deletion event.
func (s *CompanyService) DeleteCompany(ctx context.Context, id string) error {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteCompany(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete company: %w", err)
	}

	go func() {
		s.producer.Produce(events.CompanyDeleted, company)
	}()
	return nil
}
