package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	dbmodels "github.com/gartstein/companydir/internal/company/db/models"
	e "github.com/gartstein/companydir/internal/company/errors"
	"github.com/gartstein/companydir/internal/company/models"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Repository stores companies in a relational database through GORM.
type Repository struct {
	db *gorm.DB
}

// NewPostgresRepository connects to Postgres using a DSN or URL.
func NewPostgresRepository(dsn string) (*Repository, error) {
	return NewRepository(postgres.Open(dsn))
}

// NewSQLiteRepository opens a SQLite database.
func NewSQLiteRepository(dsn string) (*Repository, error) {
	return NewRepository(sqlite.Open(dsn))
}

// NewRepository opens the dialector and migrates the companies table.
func NewRepository(dialector gorm.Dialector) (*Repository, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&dbmodels.Company{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	row := dbmodels.FromDomain(company)
	if result := r.db.WithContext(ctx).Create(row); result.Error != nil {
		return result.Error
	}
	*company = *row.ToDomain()
	return nil
}

func (r *Repository) ListCompanies(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error) {
	var rows []dbmodels.Company
	result := r.db.WithContext(ctx).Scopes(filterScope(filter)).Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	companies := make([]*models.Company, 0, len(rows))
	for i := range rows {
		companies = append(companies, rows[i].ToDomain())
	}
	return companies, nil
}

func (r *Repository) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var row dbmodels.Company
	result := r.db.WithContext(ctx).First(&row, "id = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return row.ToDomain(), nil
}

func (r *Repository) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error {
	key, err := parseID(update.ID)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&dbmodels.Company{}).
		Where("id = ?", key).
		Updates(updateColumns(update))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteCompany(ctx context.Context, id string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Delete(&dbmodels.Company{}, "id = ?", key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

func parseID(id string) (uuid.UUID, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", e.ErrMalformedID, id)
	}
	return key, nil
}

func updateColumns(update *models.CompanyUpdate) map[string]interface{} {
	cols := map[string]interface{}{"updated_at": time.Now()}
	if update.Name != nil {
		cols["name"] = *update.Name
	}
	if update.Industry != nil {
		cols["industry"] = *update.Industry
	}
	if update.Location != nil {
		cols["location"] = *update.Location
	}
	if update.Size != nil {
		cols["size"] = *update.Size
	}
	if update.Founded != nil {
		cols["founded"] = *update.Founded
	}
	return cols
}

// filterScope turns a CompanyFilter into WHERE clauses. Search terms are
// matched literally, so LIKE wildcards in the input are escaped.
func filterScope(filter models.CompanyFilter) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		if filter.Search != "" {
			// Both sides go through the database's LOWER so they fold the
			// same way. SQLite only folds ASCII.
			pattern := "%" + escapeLike(filter.Search) + "%"
			tx = tx.Where(
				`(LOWER(name) LIKE LOWER(CAST(? AS TEXT)) ESCAPE '\' OR LOWER(industry) LIKE LOWER(CAST(? AS TEXT)) ESCAPE '\' OR LOWER(location) LIKE LOWER(CAST(? AS TEXT)) ESCAPE '\')`,
				pattern, pattern, pattern,
			)
		}
		if filter.MinSize != nil {
			tx = tx.Where("size >= ?", *filter.MinSize)
		}
		if filter.MaxSize != nil {
			tx = tx.Where("size <= ?", *filter.MaxSize)
		}
		return tx
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
