package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kbmetrics/internal/adapters/config"
	"kbmetrics/pkg/errors"
)

func TestNewClient_RejectsBadConfiguration(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MongoConfig
	}{
		{
			name: "no databases",
			cfg:  config.MongoConfig{Scheme: "mongodb", Host: "localhost:27017"},
		},
		{
			name: "empty host",
			cfg:  config.MongoConfig{Scheme: "mongodb", Databases: []string{config.DBMetrics}},
		},
		{
			name: "unsupported scheme",
			cfg: config.MongoConfig{
				Scheme:    "postgres",
				Host:      "localhost:27017",
				User:      "u",
				Password:  "p",
				Databases: []string{config.DBMetrics},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, errors.Is(err, errors.ErrConfiguration))
		})
	}
}

func TestClientOptions_AppliesSettings(t *testing.T) {
	cfg := config.MongoConfig{
		Scheme:      "mongodb",
		Host:        "localhost:27017",
		User:        "metrics",
		Password:    "pw",
		MaxPoolSize: 7,
	}

	opts := clientOptions(cfg, config.DBMetrics)
	require.NoError(t, opts.Validate())
	require.NotNil(t, opts.MaxPoolSize)
	assert.Equal(t, uint64(7), *opts.MaxPoolSize)
	require.NotNil(t, opts.Auth)
	assert.Equal(t, "metrics", opts.Auth.Username)
	assert.True(t, opts.BSONOptions.DefaultDocumentM)
	assert.True(t, opts.BSONOptions.ObjectIDAsHexString)
}

func TestClient_UnknownDatabase(t *testing.T) {
	c := &Client{}

	_, err := c.Database(config.DBAuth2)
	assert.True(t, errors.Is(err, errors.ErrUnknownDatabase))

	_, err = c.Collection(config.DBMetrics, "users")
	assert.True(t, errors.Is(err, errors.ErrUnknownDatabase))

	assert.Empty(t, c.Names())
	assert.NoError(t, c.Close(context.Background()))
}
