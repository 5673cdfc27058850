package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stratuminvest/stratum-backend/internal/models"
)

type SettingsRepository interface {
	// GetSettings returns the singleton document, creating it with
	// defaults on first read.
	GetSettings() (*models.Settings, error)
	UpdateSettings(settings *models.Settings) error
}

type MongoSettingsRepository struct {
	collection *mongo.Collection
}

func NewSettingsRepository(client *mongo.Client, dbName, collectionName string) SettingsRepository {
	collection := client.Database(dbName).Collection(collectionName)
	return &MongoSettingsRepository{collection: collection}
}

func (r *MongoSettingsRepository) GetSettings() (*models.Settings, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	defaults := models.DefaultSettings()
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var settings models.Settings
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": models.SettingsKey},
		bson.M{"$setOnInsert": defaults},
		opts,
	).Decode(&settings)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *MongoSettingsRepository) UpdateSettings(settings *models.Settings) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	settings.Key = models.SettingsKey
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": models.SettingsKey}, settings, opts)
	return err
}
