package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	calendarerrors "slotbook/internal/calendar/errors"
	"slotbook/pkg/config"
	"slotbook/pkg/model"
)

const (
	CollectionName = "Calendar_links"
)

// LinkRepository stores at most one calendar link per user; the user id is
// the document _id.
type LinkRepository interface {
	Upsert(ctx context.Context, link *model.CalendarLink) error
	FindByUser(ctx context.Context, userID string) (*model.CalendarLink, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type mongoLinkRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLinkRepository(cfg *config.Config) LinkRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLinkRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoLinkRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoLinkRepository) Upsert(ctx context.Context, link *model.CalendarLink) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)

	update := bson.M{
		"$set": bson.M{
			"access_token":  link.AccessToken,
			"refresh_token": link.RefreshToken,
			"expiry":        link.Expiry,
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": link.UserID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert calendar link: %w", err)
	}
	return nil
}

func (r *mongoLinkRepository) FindByUser(ctx context.Context, userID string) (*model.CalendarLink, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var link model.CalendarLink
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, calendarerrors.ErrNoLink
		}
		return nil, fmt.Errorf("failed to find calendar link: %w", err)
	}

	return &link, nil
}

func (r *mongoLinkRepository) DeleteByUser(ctx context.Context, userID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete calendar link: %w", err)
	}
	return nil
}
