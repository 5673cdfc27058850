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

type PlanChange struct {
	PlanID          primitive.ObjectID
	Amount          float64
	DailyProfitRate float64
	EndDate         time.Time
}

type InvestmentRepository interface {
	SaveInvestment(investment *models.Investment) error
	GetInvestmentByID(id primitive.ObjectID) (*models.Investment, error)
	GetInvestmentsByUserID(userID primitive.ObjectID) ([]*models.Investment, error)
	GetActiveInvestmentByUserID(userID primitive.ObjectID) (*models.Investment, error)
	CountActiveByPlanID(planID primitive.ObjectID) (int64, error)

	// FindEligible returns active investments not yet credited today:
	// last_profit_credit_at < startOfDay, or never set.
	FindEligible(startOfDay time.Time) ([]*models.Investment, error)

	// ClaimDailyProfit advances last_profit_credit_at and accrues profit in
	// one conditional update carrying the eligibility predicate. A false
	// return means another run already claimed today.
	ClaimDailyProfit(id primitive.ObjectID, startOfDay, now time.Time, profit float64) (bool, error)

	// ReleaseDailyProfit undoes a claim whose balance credit failed, so the
	// investment is eligible again on the next run.
	ReleaseDailyProfit(id primitive.ObjectID, previous *time.Time, profit float64) error

	// Complete transitions active -> completed; false when the investment
	// was not active.
	Complete(id primitive.ObjectID) (bool, error)

	// ApplyPlanChange rewrites an active investment in place for an upgrade.
	ApplyPlanChange(id primitive.ObjectID, change PlanChange, now time.Time) error
}

type MongoInvestmentRepository struct {
	collection *mongo.Collection
}

func NewInvestmentRepository(client *mongo.Client, dbName, collectionName string) InvestmentRepository {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoInvestmentRepository{collection: collection}
}

func (r *MongoInvestmentRepository) SaveInvestment(investment *models.Investment) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if investment.ID.IsZero() {
		investment.ID = primitive.NewObjectID()
		investment.CreatedAt = time.Now()
	}
	investment.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, investment)
	return err
}

func (r *MongoInvestmentRepository) GetInvestmentByID(id primitive.ObjectID) (*models.Investment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var investment models.Investment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&investment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &investment, nil
}

func (r *MongoInvestmentRepository) GetInvestmentsByUserID(userID primitive.ObjectID) ([]*models.Investment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var investments []*models.Investment
	if err := cursor.All(ctx, &investments); err != nil {
		return nil, err
	}
	return investments, nil
}

func (r *MongoInvestmentRepository) GetActiveInvestmentByUserID(userID primitive.ObjectID) (*models.Investment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var investment models.Investment
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "status": models.InvestmentStatusActive}).Decode(&investment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &investment, nil
}

func (r *MongoInvestmentRepository) CountActiveByPlanID(planID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"plan_id": planID, "status": models.InvestmentStatusActive})
}

func eligibilityFilter(startOfDay time.Time) bson.M {
	return bson.M{
		"status": models.InvestmentStatusActive,
		"$or": []bson.M{
			{"last_profit_credit_at": bson.M{"$lt": startOfDay}},
			{"last_profit_credit_at": nil},
			{"last_profit_credit_at": bson.M{"$exists": false}},
		},
	}
}

func (r *MongoInvestmentRepository) FindEligible(startOfDay time.Time) ([]*models.Investment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, eligibilityFilter(startOfDay), options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var investments []*models.Investment
	if err := cursor.All(ctx, &investments); err != nil {
		return nil, err
	}
	return investments, nil
}

func (r *MongoInvestmentRepository) ClaimDailyProfit(id primitive.ObjectID, startOfDay, now time.Time, profit float64) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := eligibilityFilter(startOfDay)
	filter["_id"] = id

	update := bson.M{
		"$set": bson.M{"last_profit_credit_at": now, "updated_at": now},
		"$inc": bson.M{"current_profit": profit},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *MongoInvestmentRepository) ReleaseDailyProfit(id primitive.ObjectID, previous *time.Time, profit float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_profit_credit_at": previous, "updated_at": time.Now()},
		"$inc": bson.M{"current_profit": -profit},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *MongoInvestmentRepository) Complete(id primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id, "status": models.InvestmentStatusActive}
	update := bson.M{"$set": bson.M{"status": models.InvestmentStatusCompleted, "updated_at": time.Now()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *MongoInvestmentRepository) ApplyPlanChange(id primitive.ObjectID, change PlanChange, now time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id, "status": models.InvestmentStatusActive}
	update := bson.M{
		"$set": bson.M{
			"plan_id":               change.PlanID,
			"amount":                change.Amount,
			"daily_profit_rate":     change.DailyProfitRate,
			"end_date":              change.EndDate,
			"last_profit_credit_at": now,
			"updated_at":            now,
		},
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
