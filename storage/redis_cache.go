package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Fubalt/Blindtest-web-app/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type roomStore interface {
	CreateRoom(ctx context.Context, room domain.Room) error
	GetRoom(ctx context.Context, id string) (domain.Room, error)
	UpdateRoom(ctx context.Context, id string, apply func(room *domain.Room) error) (domain.Room, error)
	DeleteRoom(ctx context.Context, id string) error
	ListRooms(ctx context.Context) ([]domain.Room, error)
}

// RedisRoomCache serves GetRoom from a short lived Redis copy so clients
// polling the room snapshot do not hit the database each time. Mutations go
// straight to the wrapped store, then bump the room generation and drop the
// cached copy. A fill only lands if the generation did not move while the
// room was being loaded.
type RedisRoomCache struct {
	next   roomStore
	client *redis.Client
	ttl    time.Duration
	genTTL time.Duration
}

func NewRedisRoomCache(next roomStore, client *redis.Client, ttl time.Duration) *RedisRoomCache {
	return &RedisRoomCache{next: next, client: client, ttl: ttl, genTTL: max(time.Hour, 10*ttl)}
}

func (c *RedisRoomCache) key(id string) string {
	return fmt.Sprintf("room:%s:snapshot", id)
}

func (c *RedisRoomCache) genKey(id string) string {
	return fmt.Sprintf("room:%s:gen", id)
}

func (c *RedisRoomCache) CreateRoom(ctx context.Context, room domain.Room) error {
	return c.next.CreateRoom(ctx, room)
}

func (c *RedisRoomCache) GetRoom(ctx context.Context, id string) (domain.Room, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	switch {
	case err == nil:
		var room domain.Room
		if uerr := json.Unmarshal(data, &room); uerr == nil {
			return room, nil
		}
		log.Warn().Str("room", id).Msg("dropping unreadable cached room")
	case errors.Is(err, redis.Nil):
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.Room{}, err
	default:
		log.Warn().Err(err).Str("room", id).Msg("room cache read failed")
	}

	return c.fill(ctx, id)
}

// fill loads the room from the wrapped store while watching its generation
// key. A write that commits in between bumps the generation, EXEC aborts and
// the loaded copy is returned without being cached.
func (c *RedisRoomCache) fill(ctx context.Context, id string) (domain.Room, error) {
	var (
		room     domain.Room
		loaded   bool
		storeErr error
	)
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		room, storeErr = c.next.GetRoom(ctx, id)
		if storeErr != nil {
			return storeErr
		}
		loaded = true

		data, err := json.Marshal(room)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(id), data, c.ttl)
			return nil
		})
		return err
	}, c.genKey(id))

	switch {
	case storeErr != nil:
		return domain.Room{}, storeErr
	case loaded:
		if err != nil && !errors.Is(err, redis.TxFailedErr) {
			log.Warn().Err(err).Str("room", id).Msg("room cache write failed")
		}
		return room, nil
	}

	// redis failed before the store was reached
	log.Warn().Err(err).Str("room", id).Msg("room cache watch failed")
	return c.next.GetRoom(ctx, id)
}

func (c *RedisRoomCache) invalidate(ctx context.Context, id string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(id))
		pipe.Expire(ctx, c.genKey(id), c.genTTL)
		pipe.Del(ctx, c.key(id))
		return nil
	})
	if err != nil {
		log.Warn().Err(fmt.Errorf("%w: %w", domain.UnexpectedCacheError, err)).Str("room", id).Msg("room cache invalidation failed")
	}
}

func (c *RedisRoomCache) UpdateRoom(ctx context.Context, id string, apply func(room *domain.Room) error) (domain.Room, error) {
	room, err := c.next.UpdateRoom(ctx, id, apply)
	if err != nil {
		return domain.Room{}, err
	}
	c.invalidate(ctx, id)
	return room, nil
}

func (c *RedisRoomCache) DeleteRoom(ctx context.Context, id string) error {
	if err := c.next.DeleteRoom(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *RedisRoomCache) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return c.next.ListRooms(ctx)
}
