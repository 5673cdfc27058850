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

type WithdrawalRepository interface {
	SaveWithdrawal(withdrawal *models.Withdrawal) error
	GetWithdrawalByID(id primitive.ObjectID) (*models.Withdrawal, error)
	GetWithdrawalsByUserID(userID primitive.ObjectID) ([]*models.Withdrawal, error)
	GetAllWithdrawals(status models.RequestStatus, page, limit int64) ([]*models.Withdrawal, int64, error)
	MarkReviewed(id primitive.ObjectID, status models.RequestStatus, adminID primitive.ObjectID, note string, at time.Time) (bool, error)

	// RevertReview puts a withdrawal back to pending. Compensation only,
	// for a rejection whose refund credit failed.
	RevertReview(id primitive.ObjectID) error
}

type MongoWithdrawalRepository struct {
	collection *mongo.Collection
}

func NewWithdrawalRepository(client *mongo.Client, dbName, collectionName string) WithdrawalRepository {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoWithdrawalRepository{collection: collection}
}

func (r *MongoWithdrawalRepository) SaveWithdrawal(withdrawal *models.Withdrawal) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if withdrawal.ID.IsZero() {
		withdrawal.ID = primitive.NewObjectID()
	}
	withdrawal.Status = models.RequestStatusPending
	withdrawal.RequestDate = time.Now()
	_, err := r.collection.InsertOne(ctx, withdrawal)
	return err
}

func (r *MongoWithdrawalRepository) GetWithdrawalByID(id primitive.ObjectID) (*models.Withdrawal, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var withdrawal models.Withdrawal
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&withdrawal)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &withdrawal, nil
}

func (r *MongoWithdrawalRepository) GetWithdrawalsByUserID(userID primitive.ObjectID) ([]*models.Withdrawal, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.M{"request_date": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var withdrawals []*models.Withdrawal
	if err := cursor.All(ctx, &withdrawals); err != nil {
		return nil, err
	}
	return withdrawals, nil
}

func (r *MongoWithdrawalRepository) GetAllWithdrawals(status models.RequestStatus, page, limit int64) ([]*models.Withdrawal, int64, error) {
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

	var withdrawals []*models.Withdrawal
	if err := cursor.All(ctx, &withdrawals); err != nil {
		return nil, 0, err
	}
	return withdrawals, total, nil
}

func (r *MongoWithdrawalRepository) MarkReviewed(id primitive.ObjectID, status models.RequestStatus, adminID primitive.ObjectID, note string, at time.Time) (bool, error) {
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

func (r *MongoWithdrawalRepository) RevertReview(id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set":   bson.M{"status": models.RequestStatusPending},
		"$unset": bson.M{"review_date": "", "admin_id": "", "admin_note": ""},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}
