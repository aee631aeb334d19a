// Package redis connects to Redis with retries and exposes a readiness probe.
//
// Redis is optional in notifykit: it backs the distributed dispatch lock when
// REDIS_URL is set.
//
//	cfg := redis.Config{ConnectionURL: "redis://localhost:6379/0", RetryAttempts: 3}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	probe := redis.Healthcheck(client)
package redis
