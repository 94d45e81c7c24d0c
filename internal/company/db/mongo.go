package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	e "github.com/gartstein/companydir/internal/company/errors"
	"github.com/gartstein/companydir/internal/company/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

const (
	// DefaultMongoDatabase is used when the connection string names none.
	DefaultMongoDatabase = "companydir"
	companiesCollection  = "companies"
)

// companyDocument is the BSON shape of a company in MongoDB.
type companyDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Industry  string             `bson:"industry"`
	Location  string             `bson:"location"`
	Size      *int               `bson:"size,omitempty"`
	Founded   *int               `bson:"founded,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *companyDocument) toDomain() *models.Company {
	return &models.Company{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Industry:  d.Industry,
		Location:  d.Location,
		Size:      d.Size,
		Founded:   d.Founded,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// MongoRepository stores companies as documents in a MongoDB collection.
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoRepository connects to the deployment named by uri and verifies
// it answers a ping.
func NewMongoRepository(ctx context.Context, uri string) (*MongoRepository, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid mongo uri: %w", ErrInvalidURI, err)
	}
	database := cs.Database
	if database == "" {
		database = DefaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	return &MongoRepository{
		client:     client,
		collection: client.Database(database).Collection(companiesCollection),
		now:        mongoNow,
	}, nil
}

// mongoNow matches the millisecond precision BSON dates are stored with.
func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (r *MongoRepository) CreateCompany(ctx context.Context, company *models.Company) error {
	now := r.now()
	doc := companyDocument{
		ID:        primitive.NewObjectID(),
		Name:      company.Name,
		Industry:  company.Industry,
		Location:  company.Location,
		Size:      company.Size,
		Founded:   company.Founded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return err
	}
	*company = *doc.toDomain()
	return nil
}

func (r *MongoRepository) ListCompanies(ctx context.Context, filter models.CompanyFilter) ([]*models.Company, error) {
	cursor, err := r.collection.Find(ctx, mongoFilter(filter))
	if err != nil {
		return nil, err
	}
	var docs []companyDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	companies := make([]*models.Company, 0, len(docs))
	for i := range docs {
		companies = append(companies, docs[i].toDomain())
	}
	return companies, nil
}

func (r *MongoRepository) GetCompany(ctx context.Context, id string) (*models.Company, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc companyDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, e.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error {
	oid, err := parseObjectID(update.ID)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": mongoSet(update, r.now())})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) DeleteCompany(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", e.ErrMalformedID, id)
	}
	return oid, nil
}

// mongoFilter builds the find filter for a listing. The search text is
// quoted so it matches literally, case-insensitively.
func mongoFilter(filter models.CompanyFilter) bson.M {
	query := bson.M{}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"industry": pattern},
			bson.M{"location": pattern},
		}
	}
	if filter.HasSizeBounds() {
		size := bson.M{}
		if filter.MinSize != nil {
			size["$gte"] = *filter.MinSize
		}
		if filter.MaxSize != nil {
			size["$lte"] = *filter.MaxSize
		}
		query["size"] = size
	}
	return query
}

func mongoSet(update *models.CompanyUpdate, now time.Time) bson.M {
	set := bson.M{"updatedAt": now}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Industry != nil {
		set["industry"] = *update.Industry
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.Size != nil {
		set["size"] = *update.Size
	}
	if update.Founded != nil {
		set["founded"] = *update.Founded
	}
	return set
}
