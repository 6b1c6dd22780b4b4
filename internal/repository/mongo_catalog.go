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

type mongoServices struct {
	collection *mongo.Collection
}

func (r *mongoServices) Create(ctx context.Context, service *models.Service) error {
	service.ID = primitive.NewObjectID()
	service.CreatedAt = time.Now()
	service.UpdatedAt = service.CreatedAt

	_, err := r.collection.InsertOne(ctx, service)
	return translate(err)
}

func (r *mongoServices) InsertMany(ctx context.Context, services []models.Service) error {
	if len(services) == 0 {
		return nil
	}
	now := time.Now()
	docs := make([]interface{}, 0, len(services))
	for i := range services {
		services[i].ID = primitive.NewObjectID()
		services[i].CreatedAt = now
		services[i].UpdatedAt = now
		docs = append(docs, services[i])
	}
	_, err := r.collection.InsertMany(ctx, docs)
	return translate(err)
}

func (r *mongoServices) find(ctx context.Context, filter bson.M) ([]models.Service, error) {
	cur, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var services []models.Service
	if err := cur.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (r *mongoServices) List(ctx context.Context) ([]models.Service, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoServices) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoServices) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

func (r *mongoServices) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Service, error) {
	var service models.Service
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&service); err != nil {
		return nil, translate(err)
	}
	return &service, nil
}

func (r *mongoServices) Update(ctx context.Context, service *models.Service) error {
	service.UpdatedAt = time.Now()
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": service.ID}, bson.M{"$set": bson.M{
		"name":        service.Name,
		"price":       service.Price,
		"description": service.Description,
		"updated_at":  service.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoServices) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
