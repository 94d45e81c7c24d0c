package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gartstein/companydir/internal/company/models"
)

// ErrInvalidURI marks connection strings that can never work, as opposed to
// a store that is not reachable yet.
var ErrInvalidURI = errors.New("invalid store connection string")

// Store is the set of operations both backends provide.
type Store interface {
	CreateCompany(ctx context.Context, company *models.Company) error
	ListCompanies(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error)
	GetCompany(ctx context.Context, id string) (*models.Company, error)
	UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error
	DeleteCompany(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*MongoRepository)(nil)
)

// Open picks a backend from the connection string scheme:
// mongodb:// and mongodb+srv:// use MongoDB, postgres:// and postgresql://
// use Postgres, and sqlite:<dsn> opens a SQLite database at <dsn>.
func Open(ctx context.Context, uri string) (Store, error) {
	switch {
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return NewMongoRepository(ctx, uri)
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return NewPostgresRepository(uri)
	case strings.HasPrefix(uri, "sqlite:"):
		dsn := strings.TrimPrefix(strings.TrimPrefix(uri, "sqlite:"), "//")
		if dsn == "" {
			return nil, fmt.Errorf("%w: sqlite connection string %q has no database", ErrInvalidURI, uri)
		}
		return NewSQLiteRepository(dsn)
	default:
		return nil, fmt.Errorf("%w: unsupported store connection string %q", ErrInvalidURI, redact(uri))
	}
}

// redact hides credentials embedded before the host part.
func redact(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return scheme + "://***@" + rest[at+1:]
	}
	return uri
}
