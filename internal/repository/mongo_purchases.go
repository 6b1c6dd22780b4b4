package repository

import (
	"context"
	"time"

	"github.com/markjakearzadon/servicedesk-gobackend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoPurchases struct {
	collection *mongo.Collection
}

func (r *mongoPurchases) Create(ctx context.Context, purchase *models.Purchase) error {
	purchase.ID = primitive.NewObjectID()
	if purchase.DatePurchased.IsZero() {
		purchase.DatePurchased = time.Now()
	}
	if purchase.Status == "" {
		purchase.Status = models.StatusPending
	}
	_, err := r.collection.InsertOne(ctx, purchase)
	return translate(err)
}

func (r *mongoPurchases) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&purchase); err != nil {
		return nil, translate(err)
	}
	return &purchase, nil
}

func (r *mongoPurchases) List(ctx context.Context, filter PurchaseFilter) ([]models.Purchase, error) {
	query := bson.M{}
	if !filter.UserID.IsZero() {
		query["user"] = filter.UserID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	cur, err := r.collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "date_purchased", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var purchases []models.Purchase
	if err := cur.All(ctx, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *mongoPurchases) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PurchaseStatus) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoPurchases) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
