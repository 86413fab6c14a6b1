package mongo

import (
	"context"
	"sort"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"kbmetrics/internal/adapters/config"
	"kbmetrics/pkg/errors"
)

// Client holds one authenticated connection per configured logical database.
// Handles are created once in NewClient and are safe for concurrent use.
type Client struct {
	clients map[string]*mongo.Client
	dbs     map[string]*mongo.Database
}

// NewClient opens a connection for every database in cfg.Databases.
// Any failure disconnects what was already opened and returns an error
// wrapping errors.ErrConfiguration; the facade is never partially built.
func NewClient(ctx context.Context, cfg config.MongoConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(errors.ErrConfiguration, "mongo: %v", err)
	}

	c := &Client{
		clients: make(map[string]*mongo.Client, len(cfg.Databases)),
		dbs:     make(map[string]*mongo.Database, len(cfg.Databases)),
	}

	for _, name := range cfg.Databases {
		opts := clientOptions(cfg, name)
		if err := opts.Validate(); err != nil {
			c.Close(ctx)
			return nil, errors.Wrapf(errors.ErrConfiguration, "mongo: database %q: %v", name, err)
		}

		client, err := mongo.Connect(opts)
		if err != nil {
			c.Close(ctx)
			return nil, errors.Wrapf(errors.ErrConfiguration, "mongo: connect %q: %v", name, err)
		}
		c.clients[name] = client
		c.dbs[name] = client.Database(name)

		if err := ping(ctx, client, cfg); err != nil {
			c.Close(ctx)
			return nil, errors.Wrapf(errors.ErrConfiguration, "mongo: ping %q: %v", name, err)
		}
	}

	return c, nil
}

func ping(ctx context.Context, client *mongo.Client, cfg config.MongoConfig) error {
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	return client.Ping(ctx, nil)
}

func clientOptions(cfg config.MongoConfig, database string) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(cfg.URI(database)).
		SetBSONOptions(&options.BSONOptions{
			DefaultDocumentM:    true,
			ObjectIDAsHexString: true,
		})
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	return opts
}

// Database returns the handle for a configured logical database
func (c *Client) Database(name string) (*mongo.Database, error) {
	db, ok := c.dbs[name]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownDatabase, "database %q", name)
	}
	return db, nil
}

// Collection returns a collection handle in a configured logical database
func (c *Client) Collection(database, collection string) (*mongo.Collection, error) {
	db, err := c.Database(database)
	if err != nil {
		return nil, err
	}
	return db.Collection(collection), nil
}

// Names returns the configured database names in sorted order
func (c *Client) Names() []string {
	names := make([]string, 0, len(c.dbs))
	for name := range c.dbs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Health pings every configured database
func (c *Client) Health(ctx context.Context) error {
	for _, name := range c.Names() {
		if err := c.clients[name].Ping(ctx, nil); err != nil {
			return errors.Wrapf(err, "mongo: ping %q", name)
		}
	}
	return nil
}

// Close disconnects all clients
func (c *Client) Close(ctx context.Context) error {
	var errs errors.MultiError
	for name, client := range c.clients {
		errs.Add(errors.Wrapf(client.Disconnect(ctx), "mongo: disconnect %q", name))
	}
	return errs.ToError()
}
