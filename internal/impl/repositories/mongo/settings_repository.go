package repositories_mongo

import (
	"context"
	"errors"
	"time"

	"github.com/drujensen/deskimager/internal/domain/entities"
	domainerrors "github.com/drujensen/deskimager/internal/domain/errors"
	"github.com/drujensen/deskimager/internal/domain/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SettingsCollection is the collection holding one document per settings key.
const SettingsCollection = "settings"

type settingsDocument struct {
	Key       string             `bson:"_id"`
	Settings  *entities.Settings `bson:"settings"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type MongoSettingsRepository struct {
	collection *mongo.Collection
}

func NewMongoSettingsRepository(collection *mongo.Collection) *MongoSettingsRepository {
	return &MongoSettingsRepository{
		collection: collection,
	}
}

func (r *MongoSettingsRepository) LoadSettings(ctx context.Context, key string) (*entities.Settings, error) {
	var doc settingsDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainerrors.NotFoundErrorf("settings %q not found", key)
	}
	if err != nil {
		return nil, domainerrors.InternalErrorf("failed to load settings: %v", err)
	}
	if doc.Settings == nil {
		return nil, domainerrors.NotFoundErrorf("settings %q not found", key)
	}
	return doc.Settings, nil
}

func (r *MongoSettingsRepository) SaveSettings(ctx context.Context, key string, settings *entities.Settings) error {
	doc := settingsDocument{Key: key, Settings: settings, UpdatedAt: time.Now()}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return domainerrors.InternalErrorf("failed to save settings: %v", err)
	}
	return nil
}

var _ interfaces.SettingsRepository = (*MongoSettingsRepository)(nil)
