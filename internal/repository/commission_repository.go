package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stratuminvest/stratum-backend/internal/models"
)

type CommissionRepository interface {
	SaveCommission(commission *models.Commission) error
	GetCommissionsByInviterID(inviterID primitive.ObjectID, page, limit int64) ([]*models.Commission, int64, error)
	SumByInviterID(inviterID primitive.ObjectID) (float64, error)
}

type MongoCommissionRepository struct {
	collection *mongo.Collection
}

func NewCommissionRepository(client *mongo.Client, dbName, collectionName string) CommissionRepository {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoCommissionRepository{collection: collection}
}

func (r *MongoCommissionRepository) SaveCommission(commission *models.Commission) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if commission.ID.IsZero() {
		commission.ID = primitive.NewObjectID()
	}
	commission.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, commission)
	return err
}

func (r *MongoCommissionRepository) GetCommissionsByInviterID(inviterID primitive.ObjectID, page, limit int64) ([]*models.Commission, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"inviter_id": inviterID}
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		opts = opts.SetSkip((page - 1) * limit).SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var commissions []*models.Commission
	if err := cursor.All(ctx, &commissions); err != nil {
		return nil, 0, err
	}
	return commissions, total, nil
}

func (r *MongoCommissionRepository) SumByInviterID(inviterID primitive.ObjectID) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"inviter_id": inviterID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}
