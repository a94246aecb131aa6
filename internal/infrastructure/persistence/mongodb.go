package persistence

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultMongoConnectTimeout = 10 * time.Second

// MongoConfig describes the saga journal connection
type MongoConfig struct {
	URI            string
	Username       string
	Password       string
	AppName        string
	ConnectTimeout time.Duration
}

func (c MongoConfig) clientOptions() *options.ClientOptions {
	opts := options.Client().ApplyURI(c.URI)
	if c.AppName != "" {
		opts.SetAppName(c.AppName)
	}
	if c.Username != "" && c.Password != "" {
		opts.SetAuth(options.Credential{
			Username: c.Username,
			Password: c.Password,
		})
	}
	opts.SetConnectTimeout(c.connectTimeout())
	opts.SetServerSelectionTimeout(c.connectTimeout())
	return opts
}

func (c MongoConfig) connectTimeout() time.Duration {
	if c.ConnectTimeout <= 0 {
		return defaultMongoConnectTimeout
	}
	return c.ConnectTimeout
}

// NewMongoClient connects to the journal database and checks it is reachable
func NewMongoClient(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	opts := cfg.clientOptions()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid MongoDB options: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.connectTimeout())
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach MongoDB: %w", err)
	}

	return client, nil
}

// GetDatabase gets a database from the client
func GetDatabase(client *mongo.Client, name string) *mongo.Database {
	return client.Database(name)
}
