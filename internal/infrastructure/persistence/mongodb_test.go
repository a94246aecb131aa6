package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoConfig_ClientOptions(t *testing.T) {
	opts := MongoConfig{
		URI:            "mongodb://localhost:27017",
		Username:       "ride",
		Password:       "secret",
		AppName:        "ride-service",
		ConnectTimeout: 3 * time.Second,
	}.clientOptions()

	require.NotNil(t, opts.AppName)
	assert.Equal(t, "ride-service", *opts.AppName)
	require.NotNil(t, opts.Auth)
	assert.Equal(t, "ride", opts.Auth.Username)
	require.NotNil(t, opts.ConnectTimeout)
	assert.Equal(t, 3*time.Second, *opts.ConnectTimeout)
	assert.Equal(t, 3*time.Second, *opts.ServerSelectionTimeout)
}

func TestMongoConfig_Defaults(t *testing.T) {
	opts := MongoConfig{URI: "mongodb://localhost:27017"}.clientOptions()

	assert.Nil(t, opts.Auth)
	assert.Nil(t, opts.AppName)
	assert.Equal(t, defaultMongoConnectTimeout, *opts.ConnectTimeout)
}

func TestNewMongoClient_Errors(t *testing.T) {
	_, err := NewMongoClient(context.Background(), MongoConfig{URI: "not-a-mongo-uri"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MongoDB")

	_, err = NewMongoClient(context.Background(), MongoConfig{
		URI:            "mongodb://127.0.0.1:1/?directConnection=true",
		ConnectTimeout: 100 * time.Millisecond,
	})
	assert.ErrorContains(t, err, "failed to reach MongoDB")
}
