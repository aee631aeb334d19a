// Package mongo connects to MongoDB with environment-driven pool settings and
// connection retries, and exposes a readiness probe.
//
//	var cfg mongo.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Disconnect(context.Background())
//
//	store := notification.NewMongoStorage(client.Database(cfg.Database), cfg.Collection)
package mongo
