package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stratuminvest/stratum-backend/internal/apperrors"
	"github.com/stratuminvest/stratum-backend/internal/models"
)

type PlanRepository interface {
	SavePlan(plan *models.Plan) error
	GetPlanByID(id primitive.ObjectID) (*models.Plan, error)
	GetPlanByName(name string) (*models.Plan, error)
	GetAllPlans(activeOnly bool) ([]*models.Plan, error)
	UpdatePlan(plan *models.Plan) error
	DeletePlan(id primitive.ObjectID) error
}

type MongoPlanRepository struct {
	collection *mongo.Collection
}

func NewPlanRepository(client *mongo.Client, dbName, collectionName string) PlanRepository {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoPlanRepository{collection: collection}
}

func (r *MongoPlanRepository) SavePlan(plan *models.Plan) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if plan.ID.IsZero() {
		plan.ID = primitive.NewObjectID()
		plan.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, plan)
	return err
}

func (r *MongoPlanRepository) GetPlanByID(id primitive.ObjectID) (*models.Plan, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var plan models.Plan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *MongoPlanRepository) GetPlanByName(name string) (*models.Plan, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var plan models.Plan
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&plan)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *MongoPlanRepository) GetAllPlans(activeOnly bool) ([]*models.Plan, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"price": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var plans []*models.Plan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *MongoPlanRepository) UpdatePlan(plan *models.Plan) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"name":              plan.Name,
			"price":             plan.Price,
			"daily_profit_rate": plan.DailyProfitRate,
			"is_active":         plan.IsActive,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFoundf("plan %s", plan.ID.Hex())
	}
	return nil
}

func (r *MongoPlanRepository) DeletePlan(id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFoundf("plan %s", id.Hex())
	}
	return nil
}
