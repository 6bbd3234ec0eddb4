// Package testutil holds test doubles shared by several packages.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FakeRedis implements the handful of redis.Cmdable methods the crawler uses
// on top of in-memory maps. Calling any other method panics.
type FakeRedis struct {
	redis.Cmdable

	mu     sync.Mutex
	Values map[string]any
	TTLs   map[string]time.Duration
	Lists  map[string][]string
	Err    error

	// RPopErr fails RPOP only, leaving BRPOP working
	RPopErr error
}

// NewFakeRedis returns an empty fake
func NewFakeRedis() *FakeRedis {
	return &FakeRedis{
		Values: map[string]any{},
		TTLs:   map[string]time.Duration{},
		Lists:  map[string][]string{},
	}
}

func (f *FakeRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return redis.NewIntResult(0, f.Err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.Values[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *FakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return redis.NewStatusResult("", f.Err)
	}
	f.Values[key] = value
	f.TTLs[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *FakeRedis) LPush(_ context.Context, key string, values ...any) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return redis.NewIntResult(0, f.Err)
	}
	for _, v := range values {
		var s string
		switch val := v.(type) {
		case []byte:
			s = string(val)
		case string:
			s = val
		}
		f.Lists[key] = append([]string{s}, f.Lists[key]...)
	}
	return redis.NewIntResult(int64(len(f.Lists[key])), nil)
}

func (f *FakeRedis) LLen(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return redis.NewIntResult(int64(len(f.Lists[key])), nil)
}

func (f *FakeRedis) BRPop(ctx context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return redis.NewStringSliceResult(nil, f.Err)
	}
	for _, key := range keys {
		if v, ok := f.popTail(key); ok {
			return redis.NewStringSliceResult([]string{key, v}, nil)
		}
	}
	return redis.NewStringSliceResult(nil, redis.Nil)
}

func (f *FakeRedis) RPop(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return redis.NewStringResult("", f.Err)
	}
	if f.RPopErr != nil {
		return redis.NewStringResult("", f.RPopErr)
	}
	if v, ok := f.popTail(key); ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *FakeRedis) popTail(key string) (string, bool) {
	list := f.Lists[key]
	if len(list) == 0 {
		return "", false
	}
	v := list[len(list)-1]
	f.Lists[key] = list[:len(list)-1]
	return v, true
}
