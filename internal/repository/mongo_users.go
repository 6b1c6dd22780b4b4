package repository

import (
	"context"
	"errors"
	"time"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/db"
	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongo wires every repository to its collection in database.
func NewMongo(database *mongo.Database) *Repositories {
	return &Repositories{
		Users:     &mongoUsers{collection: database.Collection(db.UsersCollection)},
		Services:  &mongoServices{collection: database.Collection(db.ServicesCollection)},
		Purchases: &mongoPurchases{collection: database.Collection(db.PurchaseCollection)},
		Business:  &mongoBusiness{collection: database.Collection(db.BusinessCollection)},
		Cards:     &mongoCards{collection: database.Collection(db.CardsCollection)},
	}
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	}
	return err
}

type mongoUsers struct {
	collection *mongo.Collection
}

func (r *mongoUsers) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, user)
	return translate(err)
}

func (r *mongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *mongoUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *mongoUsers) FindByRole(ctx context.Context, role models.Role) (*models.User, error) {
	return r.findOne(ctx, bson.M{"role": role})
}

func (r *mongoUsers) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"role": role})
}

func (r *mongoUsers) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	projection := bson.D{{Key: "password_hash", Value: 0}}
	cur, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(projection))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *mongoUsers) UpsertProfile(ctx context.Context, username string, profile models.Profile) error {
	update := bson.M{
		"$set": bson.M{
			"full_name":    profile.FullName,
			"email":        profile.Email,
			"phone_number": profile.PhoneNumber,
		},
		"$setOnInsert": bson.M{
			"role":       models.RoleCustomer,
			"created_at": time.Now(),
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"username": username}, update, options.Update().SetUpsert(true))
	return translate(err)
}
