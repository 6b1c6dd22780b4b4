package repository

import (
	"context"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoBusiness struct {
	collection *mongo.Collection
}

func (r *mongoBusiness) Get(ctx context.Context) (*models.BusinessInfo, error) {
	var info models.BusinessInfo
	if err := r.collection.FindOne(ctx, bson.M{}).Decode(&info); err != nil {
		return nil, translate(err)
	}
	return &info, nil
}

func (r *mongoBusiness) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *mongoBusiness) Insert(ctx context.Context, info *models.BusinessInfo) error {
	info.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, info)
	return translate(err)
}

func (r *mongoBusiness) Upsert(ctx context.Context, info models.BusinessInfo) error {
	update := bson.M{"$set": bson.M{
		"name":        info.Name,
		"address":     info.Address,
		"postal_code": info.PostalCode,
		"email":       info.Email,
		"phone":       info.Phone,
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{}, update, options.Update().SetUpsert(true))
	return translate(err)
}

func (r *mongoBusiness) SetLogo(ctx context.Context, path string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{}, bson.M{"$set": bson.M{"logo": path}}, options.Update().SetUpsert(true))
	return translate(err)
}
