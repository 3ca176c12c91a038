package mongodb

import (
	"context"
	"time"

	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure RedemptionRepository implements the interface
var _ repositories.RedemptionRepository = (*RedemptionRepository)(nil)

// RedemptionRepository handles MongoDB operations for the append-only
// redemption ledger.
type RedemptionRepository struct {
	collection *mongo.Collection
}

// NewRedemptionRepository creates a new RedemptionRepository and ensures
// the unique index on the redemption code.
func NewRedemptionRepository(db *mongo.Database) *RedemptionRepository {
	collection := db.Collection("redemptions")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user", Value: 1}, {Key: "redemptionDate", Value: -1}},
		},
	}
	// Index creation is idempotent; a failure here surfaces later as a
	// write error rather than aborting startup.
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &RedemptionRepository{collection: collection}
}

// Create appends a redemption record
func (r *RedemptionRepository) Create(ctx context.Context, redemption *models.Redemption) error {
	redemption.ID = primitive.NewObjectID()
	if redemption.RedemptionDate.IsZero() {
		redemption.RedemptionDate = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, redemption)
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrDuplicateCode
	}
	return err
}

// Delete removes a redemption. Only used to unwind a settlement whose
// later writes failed.
func (r *RedemptionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// FindByID finds a redemption by ID
func (r *RedemptionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Redemption, error) {
	var redemption models.Redemption
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&redemption)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &redemption, nil
}

// FindByUserID returns the user's redemptions, newest first
func (r *RedemptionRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.Redemption, error) {
	var redemptions []*models.Redemption
	filter := bson.M{"user": userID}
	opts := options.Find().SetSort(bson.D{{Key: "redemptionDate", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &redemptions); err != nil {
		return nil, err
	}
	if redemptions == nil {
		redemptions = []*models.Redemption{}
	}
	return redemptions, nil
}
