package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewClient connects to MongoDB and verifies the primary is reachable.
// opTimeout bounds every operation issued through the client.
func NewClient(ctx context.Context, uri string, opTimeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri)
	if opTimeout > 0 {
		opts.SetTimeout(opTimeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(c, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
