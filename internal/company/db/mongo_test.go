package db

import (
	"testing"
	"time"

	e "github.com/gartstein/companydir/internal/company/errors"
	"github.com/gartstein/companydir/internal/company/models"
	"github.com/gartstein/companydir/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter models.CompanyFilter
		want   bson.M
	}{
		{
			name:   "empty filter matches everything",
			filter: models.CompanyFilter{},
			want:   bson.M{},
		},
		{
			name:   "search spans three fields",
			filter: models.CompanyFilter{Search: "acm"},
			want: bson.M{"$or": bson.A{
				bson.M{"name": primitive.Regex{Pattern: "acm", Options: "i"}},
				bson.M{"industry": primitive.Regex{Pattern: "acm", Options: "i"}},
				bson.M{"location": primitive.Regex{Pattern: "acm", Options: "i"}},
			}},
		},
		{
			name:   "search metacharacters are quoted",
			filter: models.CompanyFilter{Search: "a.b*"},
			want: bson.M{"$or": bson.A{
				bson.M{"name": primitive.Regex{Pattern: `a\.b\*`, Options: "i"}},
				bson.M{"industry": primitive.Regex{Pattern: `a\.b\*`, Options: "i"}},
				bson.M{"location": primitive.Regex{Pattern: `a\.b\*`, Options: "i"}},
			}},
		},
		{
			name:   "min size only",
			filter: models.CompanyFilter{MinSize: utils.Ptr(20)},
			want:   bson.M{"size": bson.M{"$gte": 20}},
		},
		{
			name:   "both bounds",
			filter: models.CompanyFilter{MinSize: utils.Ptr(1), MaxSize: utils.Ptr(9)},
			want:   bson.M{"size": bson.M{"$gte": 1, "$lte": 9}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mongoFilter(tt.filter))
		})
	}
}

func TestMongoSet(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	set := mongoSet(&models.CompanyUpdate{Name: utils.Ptr("Acme"), Size: utils.Ptr(3)}, now)
	assert.Equal(t, bson.M{"updatedAt": now, "name": "Acme", "size": 3}, set)

	set = mongoSet(&models.CompanyUpdate{}, now)
	assert.Equal(t, bson.M{"updatedAt": now}, set)
}

func TestParseObjectID(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := parseObjectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = parseObjectID("xyz")
	assert.ErrorIs(t, err, e.ErrMalformedID)
}

func TestCompanyDocument_ToDomain(t *testing.T) {
	oid := primitive.NewObjectID()
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := companyDocument{
		ID:        oid,
		Name:      "Acme",
		Industry:  "General",
		Location:  "NY",
		Founded:   utils.Ptr(2001),
		CreatedAt: now,
		UpdatedAt: now,
	}

	c := doc.toDomain()
	assert.Equal(t, oid.Hex(), c.ID)
	assert.Equal(t, "Acme", c.Name)
	assert.Nil(t, c.Size)
	assert.Equal(t, 2001, *c.Founded)
	assert.Equal(t, now, c.CreatedAt)
}
