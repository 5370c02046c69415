package database

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	UsersCollection    = "users"
	AssetsCollection   = "assets"
	RequestsCollection = "requests"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongoDB connects, pings the primary and returns a handle on the named database.
func NewMongoDB(ctx context.Context, uri, name string) (*MongoDB, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(20 * time.Second).
		SetServerSelectionTimeout(15 * time.Second).
		SetMaxPoolSize(50)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, Unavailable("connect mongodb", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, Unavailable("ping mongodb", err)
	}

	slog.Info("Connected to MongoDB", "database", name)
	return &MongoDB{Client: client, Database: client.Database(name)}, nil
}

func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.Database.Collection(name)
}

func (m *MongoDB) Close(ctx context.Context) {
	if err := m.Client.Disconnect(ctx); err != nil {
		slog.Warn("MongoDB disconnect warning", "error", err)
	}
}
