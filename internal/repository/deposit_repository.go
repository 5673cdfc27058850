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

type DepositRepository interface {
	SaveDeposit(deposit *models.Deposit) error
	GetDepositByID(id primitive.ObjectID) (*models.Deposit, error)
	GetDepositsByUserID(userID primitive.ObjectID) ([]*models.Deposit, error)
	GetAllDeposits(status models.RequestStatus, page, limit int64) ([]*models.Deposit, int64, error)

	// MarkReviewed transitions pending -> status; false when the deposit
	// had already left pending, which keeps approval one-shot.
	MarkReviewed(id primitive.ObjectID, status models.RequestStatus, adminID primitive.ObjectID, note string, at time.Time) (bool, error)

	// RevertReview puts a deposit back to pending. Compensation only, for
	// an approval whose balance credit failed.
	RevertReview(id primitive.ObjectID) error

	CountApprovedByUserID(userID primitive.ObjectID) (int64, error)
}

type MongoDepositRepository struct {
	collection *mongo.Collection
}

func NewDepositRepository(client *mongo.Client, dbName, collectionName string) DepositRepository {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoDepositRepository{collection: collection}
}

func (r *MongoDepositRepository) SaveDeposit(deposit *models.Deposit) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if deposit.ID.IsZero() {
		deposit.ID = primitive.NewObjectID()
	}
	deposit.Status = models.RequestStatusPending
	deposit.RequestDate = time.Now()
	_, err := r.collection.InsertOne(ctx, deposit)
	return err
}

func (r *MongoDepositRepository) GetDepositByID(id primitive.ObjectID) (*models.Deposit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var deposit models.Deposit
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&deposit)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deposit, nil
}

func (r *MongoDepositRepository) GetDepositsByUserID(userID primitive.ObjectID) ([]*models.Deposit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.M{"request_date": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var deposits []*models.Deposit
	if err := cursor.All(ctx, &deposits); err != nil {
		return nil, err
	}
	return deposits, nil
}

func (r *MongoDepositRepository) GetAllDeposits(status models.RequestStatus, page, limit int64) ([]*models.Deposit, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.M{"request_date": -1})
	if limit > 0 {
		opts = opts.SetSkip((page - 1) * limit).SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var deposits []*models.Deposit
	if err := cursor.All(ctx, &deposits); err != nil {
		return nil, 0, err
	}
	return deposits, total, nil
}

func (r *MongoDepositRepository) MarkReviewed(id primitive.ObjectID, status models.RequestStatus, adminID primitive.ObjectID, note string, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id, "status": models.RequestStatusPending}
	update := bson.M{
		"$set": bson.M{
			"status":      status,
			"review_date": at,
			"admin_id":    adminID,
			"admin_note":  note,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *MongoDepositRepository) RevertReview(id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set":   bson.M{"status": models.RequestStatusPending},
		"$unset": bson.M{"review_date": "", "admin_id": "", "admin_note": ""},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *MongoDepositRepository) CountApprovedByUserID(userID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"user_id": userID, "status": models.RequestStatusApproved})
}
