package mongodb

import (
	"context"

	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure VoucherRepository implements the interface
var _ repositories.VoucherRepository = (*VoucherRepository)(nil)

// VoucherRepository handles MongoDB operations for Voucher
type VoucherRepository struct {
	collection *mongo.Collection
}

// NewVoucherRepository creates a new VoucherRepository
func NewVoucherRepository(db *mongo.Database) *VoucherRepository {
	return &VoucherRepository{
		collection: db.Collection("vouchers"),
	}
}

// Create inserts a new voucher
func (r *VoucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	voucher.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, voucher)
	return err
}

// CreateMany inserts a batch of vouchers (used by catalog seeding)
func (r *VoucherRepository) CreateMany(ctx context.Context, vouchers []*models.Voucher) error {
	docs := make([]interface{}, 0, len(vouchers))
	for _, v := range vouchers {
		if v.ID.IsZero() {
			v.ID = primitive.NewObjectID()
		}
		docs = append(docs, v)
	}
	if len(docs) == 0 {
		return nil
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// FindByID finds a voucher by ID
func (r *VoucherRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error) {
	var voucher models.Voucher
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&voucher)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &voucher, nil
}

// FindByIDs finds vouchers for a set of IDs, keyed by ID. Missing IDs are
// simply absent from the map.
func (r *VoucherRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Voucher, error) {
	result := make(map[primitive.ObjectID]*models.Voucher, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vouchers []*models.Voucher
	if err = cursor.All(ctx, &vouchers); err != nil {
		return nil, err
	}
	for _, v := range vouchers {
		result[v.ID] = v
	}
	return result, nil
}

// FindAll retrieves all vouchers
func (r *VoucherRepository) FindAll(ctx context.Context) ([]*models.Voucher, error) {
	var vouchers []*models.Voucher
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &vouchers); err != nil {
		return nil, err
	}
	if vouchers == nil {
		vouchers = []*models.Voucher{}
	}
	return vouchers, nil
}

// FindByCategory retrieves all vouchers in a category
func (r *VoucherRepository) FindByCategory(ctx context.Context, category string) ([]*models.Voucher, error) {
	var vouchers []*models.Voucher
	cursor, err := r.collection.Find(ctx, bson.M{"category": category})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &vouchers); err != nil {
		return nil, err
	}
	if vouchers == nil {
		vouchers = []*models.Voucher{}
	}
	return vouchers, nil
}

// Count returns the total number of vouchers
func (r *VoucherRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
