// Package locker provides expiring exclusive leases used to keep two
// dispatches of the same notification from running at once.
//
// RedisLocker coordinates several processes; MemoryLocker covers a single one.
//
//	lease, err := lk.Acquire(ctx, "dispatch:"+id, 30*time.Second)
//	if errors.Is(err, locker.ErrLocked) {
//	    // another dispatch is in flight
//	}
//	defer lease.Release(context.WithoutCancel(ctx))
package locker
