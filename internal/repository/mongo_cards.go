package repository

import (
	"context"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoCards struct {
	collection *mongo.Collection
}

func (r *mongoCards) Create(ctx context.Context, card *models.Card) error {
	card.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, card)
	return translate(err)
}

func (r *mongoCards) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Card, error) {
	var card models.Card
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&card); err != nil {
		return nil, translate(err)
	}
	return &card, nil
}

func (r *mongoCards) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Card, error) {
	cur, err := r.collection.Find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var cards []models.Card
	if err := cur.All(ctx, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *mongoCards) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
