package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stratuminvest/stratum-backend/internal/apperrors"
	"github.com/stratuminvest/stratum-backend/internal/models"
)

type UserRepository interface {
	SaveUser(user *models.User) error
	GetUserByID(id primitive.ObjectID) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)
	GetUserByReferralCode(code string) (*models.User, error)
	GetUserByVisitorID(visitorID string) (*models.User, error)
	GetAllUsers(page, limit int64) ([]*models.User, int64, error)
	GetUsersInvitedBy(code string, page, limit int64) ([]*models.User, int64, error)
	UpdateStatus(id primitive.ObjectID, status models.UserStatus) error

	// AdjustBalance applies a signed delta to the spendable balance. A
	// negative delta carries the non-negativity guard in the update filter,
	// so concurrent debits against the same user serialize at the store and
	// can never take the balance below zero.
	AdjustBalance(id primitive.ObjectID, delta float64) error
	// AdjustBonus applies a signed delta to the commission balance under
	// the same guard.
	AdjustBonus(id primitive.ObjectID, delta float64) error

	AddActiveInvestment(userID, investmentID primitive.ObjectID) error
	RemoveActiveInvestment(userID, investmentID primitive.ObjectID) error
	AppendDeposit(userID, depositID primitive.ObjectID) error
	AppendWithdrawal(userID, withdrawalID primitive.ObjectID) error
}

type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(client *mongo.Client, dbName, collectionName string) UserRepository {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoUserRepository{collection: collection}
}

func (r *MongoUserRepository) SaveUser(user *models.User) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, user)
	return err
}

func (r *MongoUserRepository) GetUserByID(id primitive.ObjectID) (*models.User, error) {
	return r.findOne(bson.M{"_id": id})
}

func (r *MongoUserRepository) GetUserByPhone(phone string) (*models.User, error) {
	return r.findOne(bson.M{"phone_number": phone})
}

func (r *MongoUserRepository) GetUserByReferralCode(code string) (*models.User, error) {
	return r.findOne(bson.M{"referral_code": code})
}

func (r *MongoUserRepository) GetUserByVisitorID(visitorID string) (*models.User, error) {
	return r.findOne(bson.M{"visitor_id": visitorID})
}

func (r *MongoUserRepository) findOne(filter bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *MongoUserRepository) GetAllUsers(page, limit int64) ([]*models.User, int64, error) {
	return r.findMany(bson.M{}, page, limit)
}

func (r *MongoUserRepository) GetUsersInvitedBy(code string, page, limit int64) ([]*models.User, int64, error) {
	return r.findMany(bson.M{"invited_by": code}, page, limit)
}

func (r *MongoUserRepository) findMany(filter bson.M, page, limit int64) ([]*models.User, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.M{"registration_date": -1})
	if limit > 0 {
		opts = opts.SetSkip((page - 1) * limit).SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var users []*models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *MongoUserRepository) UpdateStatus(id primitive.ObjectID, status models.UserStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFoundf("user %s", id.Hex())
	}
	return nil
}

func (r *MongoUserRepository) AdjustBalance(id primitive.ObjectID, delta float64) error {
	return r.adjustField(id, "balance", delta)
}

func (r *MongoUserRepository) AdjustBonus(id primitive.ObjectID, delta float64) error {
	return r.adjustField(id, "bonus", delta)
}

func (r *MongoUserRepository) adjustField(id primitive.ObjectID, field string, delta float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id}
	if delta < 0 {
		// The guard rides in the filter so the check and the decrement are
		// one atomic document update.
		filter[field] = bson.M{"$gte": -delta}
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if exists == 0 {
			return apperrors.NotFoundf("user %s", id.Hex())
		}
		return fmt.Errorf("%w: %s below %.2f", apperrors.ErrInsufficientFunds, field, -delta)
	}
	return nil
}

func (r *MongoUserRepository) AddActiveInvestment(userID, investmentID primitive.ObjectID) error {
	return r.updateList(userID, "$addToSet", "active_investment_ids", investmentID)
}

func (r *MongoUserRepository) RemoveActiveInvestment(userID, investmentID primitive.ObjectID) error {
	return r.updateList(userID, "$pull", "active_investment_ids", investmentID)
}

func (r *MongoUserRepository) AppendDeposit(userID, depositID primitive.ObjectID) error {
	return r.updateList(userID, "$push", "deposit_ids", depositID)
}

func (r *MongoUserRepository) AppendWithdrawal(userID, withdrawalID primitive.ObjectID) error {
	return r.updateList(userID, "$push", "withdrawal_ids", withdrawalID)
}

func (r *MongoUserRepository) updateList(userID primitive.ObjectID, op, field string, value primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{op: bson.M{field: value}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFoundf("user %s", userID.Hex())
	}
	return nil
}
