package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/rewardsy/rewards-backend/internal/models"
	"github.com/rewardsy/rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure UserRepository implements the interface
var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository handles MongoDB operations for User
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository and ensures the unique
// indexes on email and username.
func NewUserRepository(db *mongo.Database) *UserRepository {
	collection := db.Collection("users")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	// Index creation is idempotent; a failure here surfaces later as a
	// write error rather than aborting startup.
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &UserRepository{collection: collection}
}

// Create inserts a new user. The unique indexes make the insert the
// authoritative duplicate check; a racing signup loses here even when it
// passed an earlier read.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.MemberSince.IsZero() {
		user.MemberSince = now
	}
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrDuplicateUser
	}
	return err
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	filter := bson.M{"email": email}
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		return nil, err // Includes mongo.ErrNoDocuments
	}
	return &user, nil
}

// FindByEmailOrUsername finds a user matching either the email or the
// username. Used by signup to reject duplicate accounts.
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	var user models.User
	filter := bson.M{"$or": []bson.M{
		{"email": email},
		{"username": username},
	}}
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// IncrementPoints atomically adds points to the user's balance
func (r *UserRepository) IncrementPoints(ctx context.Context, id primitive.ObjectID, points int) error {
	if points <= 0 {
		return errors.New("points to add must be positive")
	}
	filter := bson.M{"_id": id}
	update := bson.M{
		"$inc": bson.M{"points": points},
		"$set": bson.M{"updatedAt": time.Now()},
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

// DebitPoints atomically subtracts amount from the user's balance if and
// only if the current balance covers it, returning the post-debit
// balance. The affordability check and the decrement are a single
// conditional update, so concurrent debits against the same user can
// never drive the balance negative.
func (r *UserRepository) DebitPoints(ctx context.Context, id primitive.ObjectID, amount int) (int, error) {
	if amount <= 0 {
		return 0, errors.New("debit amount must be positive")
	}
	filter := bson.M{
		"_id":    id,
		"points": bson.M{"$gte": amount},
	}
	update := bson.M{
		"$inc": bson.M{"points": -amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if err == nil {
		return user.Points, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		// No match means either the user is gone or the balance is too
		// low; look the user up to tell the two apart.
		if _, ferr := r.FindByID(ctx, id); ferr != nil {
			return 0, ferr // mongo.ErrNoDocuments for a missing user
		}
		return 0, repositories.ErrInsufficientPoints
	}
	return 0, err
}

// Count returns the total number of users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
