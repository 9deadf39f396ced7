package redis

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
)

// TryLock пытается один раз взять распределенную блокировку.
// ok == false, если блокировку держит другой процесс.
func (c *Client) TryLock(ctx context.Context, name string, ttl time.Duration) (unlock func(), ok bool, err error) {
	rs := redsync.New(goredis.NewPool(c.rdb))
	mutex := rs.NewMutex(name, redsync.WithExpiry(ttl), redsync.WithTries(1))

	if err := mutex.LockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return nil, false, nil
		}
		return nil, false, err
	}

	unlock = func() {
		if _, err := mutex.UnlockContext(context.Background()); err != nil {
			log.Printf("Failed to release lock %s: %v", name, err)
		}
	}
	return unlock, true, nil
}
