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

// Compile-time check to ensure CartRepository implements the interface
var _ repositories.CartRepository = (*CartRepository)(nil)

// CartRepository handles MongoDB operations for Cart. Each mutation is a
// single update statement so two concurrent adds for the same user never
// lose an increment.
type CartRepository struct {
	collection *mongo.Collection
}

// NewCartRepository creates a new CartRepository and ensures the unique
// index that enforces one cart document per user. AddItem's fallback
// upsert relies on this index: without it a lost race would insert a
// second cart instead of failing with a duplicate-key error.
func NewCartRepository(db *mongo.Database) *CartRepository {
	collection := db.Collection("carts")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	// Index creation is idempotent; a failure here surfaces later as a
	// write error rather than aborting startup.
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &CartRepository{collection: collection}
}

// FindOrCreateByUser returns the user's cart, upserting an empty one on
// first access. At most one cart per user.
func (r *CartRepository) FindOrCreateByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	filter := bson.M{"user": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"user":      userID,
			"items":     []models.CartItem{},
			"updatedAt": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var cart models.Cart
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&cart)
	if mongo.IsDuplicateKeyError(err) {
		// Lost a concurrent first-access upsert; the winner's cart exists
		// now, so the retry finds it.
		return r.FindOrCreateByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem increments the quantity of the matching cart item, or pushes a
// new item when the voucher is not in the cart yet. Both branches are
// single atomic updates; the first $inc targets the matched array element.
func (r *CartRepository) AddItem(ctx context.Context, userID, voucherID primitive.ObjectID, quantity int) error {
	now := time.Now()

	// Fast path: the voucher is already in the cart.
	filter := bson.M{"user": userID, "items.voucher": voucherID}
	update := bson.M{
		"$inc": bson.M{"items.$.quantity": quantity},
		"$set": bson.M{"updatedAt": now},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	// No existing item: push a new one, creating the cart if needed.
	item := models.CartItem{
		ID:        primitive.NewObjectID(),
		VoucherID: voucherID,
		Quantity:  quantity,
	}
	filter = bson.M{"user": userID, "items.voucher": bson.M{"$ne": voucherID}}
	update = bson.M{
		"$push": bson.M{"items": item},
		"$set":  bson.M{"updatedAt": now},
	}
	opts := options.Update().SetUpsert(true)
	_, err = r.collection.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// Lost the race with a concurrent first add of the same voucher;
		// fold this add into the now-existing item.
		return r.AddItem(ctx, userID, voucherID, quantity)
	}
	return err
}

// SetItemQuantity sets the quantity of a cart item the user owns
func (r *CartRepository) SetItemQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) error {
	filter := bson.M{"user": userID, "items._id": itemID}
	update := bson.M{
		"$set": bson.M{
			"items.$.quantity": quantity,
			"updatedAt":        time.Now(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// RemoveItem pulls a cart item the user owns
func (r *CartRepository) RemoveItem(ctx context.Context, userID, itemID primitive.ObjectID) error {
	filter := bson.M{"user": userID, "items._id": itemID}
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"_id": itemID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Clear empties the user's cart. A missing or already-empty cart is not
// an error.
func (r *CartRepository) Clear(ctx context.Context, userID primitive.ObjectID) error {
	filter := bson.M{"user": userID}
	update := bson.M{
		"$set": bson.M{
			"items":     []models.CartItem{},
			"updatedAt": time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}
