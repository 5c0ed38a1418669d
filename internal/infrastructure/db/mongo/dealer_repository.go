package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/dealerhub/dealer-admin/internal/core/domain"
	"github.com/dealerhub/dealer-admin/internal/core/ports"
)

const collectionDealers = "dealers"

// DealerRepository implements ports.DealerRepository and ports.DealerStatsReader.
type DealerRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewDealerRepository(db *mongo.Database) *DealerRepository {
	return &DealerRepository{col: db.Collection(collectionDealers), now: time.Now}
}

type mongoDealer struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Email          string             `bson:"email"`
	Phone          string             `bson:"phone"`
	Address        string             `bson:"address"`
	OperatingHours string             `bson:"operatingHours"`
	Status         string             `bson:"status"`
	Region         string             `bson:"region"`
	IsDeleted      bool               `bson:"isDeleted"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func (md *mongoDealer) toDomain() *domain.Dealer {
	return &domain.Dealer{
		ID:             md.ID.Hex(),
		Name:           md.Name,
		Email:          md.Email,
		Phone:          md.Phone,
		Address:        md.Address,
		OperatingHours: md.OperatingHours,
		Status:         domain.DealerStatus(md.Status),
		Region:         md.Region,
		IsDeleted:      md.IsDeleted,
		CreatedAt:      md.CreatedAt.UTC(),
		UpdatedAt:      md.UpdatedAt.UTC(),
	}
}

// Create inserts d and sets d.ID. A live dealer with the same email makes
// the partial unique index reject the insert with domain.ErrDealerExists.
func (r *DealerRepository) Create(ctx context.Context, d *domain.Dealer) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoDealer{
		Name:           d.Name,
		Email:          domain.NormalizeEmail(d.Email),
		Phone:          d.Phone,
		Address:        d.Address,
		OperatingHours: d.OperatingHours,
		Status:         string(d.Status),
		Region:         d.Region,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDealerExists
		}
		return fmt.Errorf("insert dealer: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("insert dealer: unexpected id type %T", res.InsertedID)
	}
	d.ID = oid.Hex()
	return nil
}

func (r *DealerRepository) FindByID(ctx context.Context, id string) (*domain.Dealer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrDealerNotFound
	}

	filter := liveFilter()
	filter["_id"] = oid
	return r.findOne(ctx, filter)
}

func (r *DealerRepository) FindActiveByEmail(ctx context.Context, email string) (*domain.Dealer, error) {
	filter := liveFilter()
	filter["email"] = domain.NormalizeEmail(email)
	return r.findOne(ctx, filter)
}

func (r *DealerRepository) findOne(ctx context.Context, filter bson.M) (*domain.Dealer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var md mongoDealer
	if err := r.col.FindOne(ctx, filter).Decode(&md); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDealerNotFound
		}
		return nil, fmt.Errorf("find dealer: %w", err)
	}
	return md.toDomain(), nil
}

// List runs the page query and the count concurrently over the same filter.
func (r *DealerRepository) List(ctx context.Context, f ports.ListDealersFilter) ([]*domain.Dealer, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildListFilter(f)
	opts := buildListOptions(f)

	var (
		docs  []mongoDealer
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cur, err := r.col.Find(gctx, filter, opts)
		if err != nil {
			return fmt.Errorf("find dealers: %w", err)
		}
		return cur.All(gctx, &docs)
	})
	g.Go(func() error {
		n, err := r.col.CountDocuments(gctx, filter)
		if err != nil {
			return fmt.Errorf("count dealers: %w", err)
		}
		total = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	dealers := make([]*domain.Dealer, 0, len(docs))
	for i := range docs {
		dealers = append(dealers, docs[i].toDomain())
	}
	return dealers, total, nil
}

// Update applies patch to a live dealer and returns the stored result.
func (r *DealerRepository) Update(ctx context.Context, id string, patch domain.DealerPatch) (*domain.Dealer, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrDealerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := buildPatch(patch)
	set["updatedAt"] = r.now().UTC()

	filter := liveFilter()
	filter["_id"] = oid

	var md mongoDealer
	err = r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&md)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, domain.ErrDealerNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, domain.ErrDealerExists
	case err != nil:
		return nil, fmt.Errorf("update dealer: %w", err)
	}
	return md.toDomain(), nil
}

// SoftDelete flags a live dealer as deleted without touching any other field.
func (r *DealerRepository) SoftDelete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrDealerNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := liveFilter()
	filter["_id"] = oid

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"isDeleted": true}})
	if err != nil {
		return fmt.Errorf("soft delete dealer: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrDealerNotFound
	}
	return nil
}

func (r *DealerRepository) Count(ctx context.Context, status domain.DealerStatus) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := liveFilter()
	if status != "" {
		filter["status"] = string(status)
	}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("count dealers: %w", err)
	}
	return n, nil
}

func (r *DealerRepository) CountByRegion(ctx context.Context) ([]domain.RegionCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, regionPipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate regions: %w", err)
	}

	out := []domain.RegionCount{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode regions: %w", err)
	}
	return out, nil
}

func (r *DealerRepository) Recent(ctx context.Context, limit int) ([]domain.DealerSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"name": 1, "email": 1, "region": 1, "status": 1, "createdAt": 1})

	cur, err := r.col.Find(ctx, liveFilter(), opts)
	if err != nil {
		return nil, fmt.Errorf("find recent dealers: %w", err)
	}

	var docs []mongoDealer
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode recent dealers: %w", err)
	}

	out := make([]domain.DealerSummary, 0, len(docs))
	for _, md := range docs {
		out = append(out, domain.DealerSummary{
			ID:        md.ID.Hex(),
			Name:      md.Name,
			Email:     md.Email,
			Region:    md.Region,
			Status:    domain.DealerStatus(md.Status),
			CreatedAt: md.CreatedAt.UTC(),
		})
	}
	return out, nil
}

// DeleteAll empties the collection. Used by the seeder only.
func (r *DealerRepository) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{})
	return err
}

// EnsureIndexes creates the dealer indexes. Email is unique among live
// dealers only, so a removed dealer's email can be reused.
func (r *DealerRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetName("email_live_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "isDeleted", Value: false}}),
		},
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "region", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "isDeleted", Value: 1}}},
		{Keys: bson.D{{Key: "isDeleted", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
