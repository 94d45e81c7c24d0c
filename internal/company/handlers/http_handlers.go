package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gartstein/companydir/internal/company/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CompanyController defines the business logic interface
// that the HTTP handlers invoke.
type CompanyController interface {
	CreateCompany(ctx context.Context, company *models.Company) (*models.Company, error)
	ListCompanies(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error)
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) (*models.Company, error)
	DeleteCompany(ctx context.Context, id string) error
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CompanyHandler serves the /api/companies REST surface,
// mapping requests to a CompanyController.
type CompanyHandler struct {
	service CompanyController
	logger  *zap.Logger
}

// NewCompanyHandler constructs a new CompanyHandler with the given service and logger.
func NewCompanyHandler(service CompanyController, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		service: service,
		logger:  logger.Named("http_handler"),
	}
}

// MountRoutes registers the company routes on r.
func (h *CompanyHandler) MountRoutes(r chi.Router) {
	r.Post("/", h.createCompany)
	r.Get("/", h.listCompanies)
	r.Get("/{id}", h.getCompany)
	r.Put("/{id}", h.updateCompany)
	r.Delete("/{id}", h.deleteCompany)
}

func (h *CompanyHandler) createCompany(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	created, err := h.service.CreateCompany(r.Context(), in.toModel())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, createResponse{
		Success: true,
		Message: "Company created successfully",
		Data:    created,
	})
}

func (h *CompanyHandler) listCompanies(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	companies, err := h.service.ListCompanies(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if companies == nil {
		companies = []*models.Company{}
	}
	h.writeJSON(w, http.StatusOK, companies)
}

func (h *CompanyHandler) getCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.service.GetCompany(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, company)
}

func (h *CompanyHandler) updateCompany(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	updated, err := h.service.UpdateCompany(r.Context(), in.toUpdate(chi.URLParam(r, "id")))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

func (h *CompanyHandler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCompany(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, messageResponse{Message: "Company deleted successfully"})
}

// HealthHandler answers 200 while the store responds to a ping and 503
// otherwise.
func (h *CompanyHandler) HealthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			h.logger.Warn("Store ping failed", zap.Error(err))
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
