package rediskv

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/pathways/core"
	"github.com/trezcool/pathways/core/kv"
)

// Store keeps documents in redis under prefix+key and announces every write on channel,
// so that other processes sharing the same redis can resynchronise.
type Store struct {
	client  *redis.Client
	prefix  string
	channel string
	origin  string // identifies this process in announcements
}

var (
	_ kv.Store   = (*Store)(nil) // interface compliance check
	_ kv.Watcher = (*Store)(nil)
)

type announcement struct {
	Origin  string `json:"origin"`
	Key     string `json:"key"`
	Deleted bool   `json:"deleted,omitempty"`
}

func New(client *redis.Client, prefix, channel string) *Store {
	return &Store{
		client:  client,
		prefix:  prefix,
		channel: channel,
		origin:  uuid.New().String(),
	}
}

// Open connects to the redis server described by conf.
func Open(ctx context.Context, conf core.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Address,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return New(client, conf.Prefix, conf.Channel), nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "getting document")
	}
	return val, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return errors.Wrap(err, "setting document")
	}
	s.announce(ctx, announcement{Origin: s.origin, Key: key})
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Wrap(err, "deleting document")
	}
	s.announce(ctx, announcement{Origin: s.origin, Key: key, Deleted: true})
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	keys := make([]string, 0)
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning keys")
	}
	sort.Strings(keys)
	return keys, nil
}

// announce is best effort: the write already happened, peers catch up on their next read.
func (s *Store) announce(ctx context.Context, a announcement) {
	if s.channel == "" {
		return
	}
	if msg, err := json.Marshal(a); err == nil {
		_ = s.client.Publish(ctx, s.channel, msg).Err()
	}
}

// Watch relays writes announced by other processes to hub until ctx is done.
func (s *Store) Watch(ctx context.Context, hub *kv.Hub) error {
	if s.channel == "" {
		<-ctx.Done()
		return nil
	}
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return errors.Wrap(err, "subscribing to changes")
	}
	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var a announcement
			if err := json.Unmarshal([]byte(msg.Payload), &a); err != nil || a.Origin == s.origin {
				continue
			}
			change := kv.Change{Key: a.Key, Deleted: a.Deleted, Remote: true}
			if !a.Deleted {
				val, ok, err := s.Get(ctx, a.Key)
				if err != nil || !ok {
					continue
				}
				change.Value = val
			}
			hub.Publish(change)
		}
	}
}

func (s *Store) Close() error { return s.client.Close() }
