package linereader

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	bferrors "github.com/vnykmshr/backflow/pkg/common/errors"
)

// RedisListResource treats a Redis list as a sequence of lines. The locator
// is the list key. Elements are fetched with LRANGE in pages of BatchSize,
// so a subscription never reads far ahead of its demand.
type RedisListResource struct {
	// Client is owned by the caller and is not closed by handles.
	Client redis.Cmdable

	// BatchSize is the number of elements fetched per round trip. Default: 64.
	BatchSize int64

	// Timeout bounds each Redis call. Default: 5s.
	Timeout time.Duration

	// RequireKey makes Open fail when the key does not exist. Redis drops
	// a list once its last element is removed, so by default a missing key
	// reads as an empty list.
	RequireKey bool
}

// Open returns a handle positioned at the head of the list. It checks the
// server is reachable and, with RequireKey, that the key exists.
func (r RedisListResource) Open(ctx context.Context, key string) (Handle, error) {
	n, err := r.Client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if n == 0 && r.RequireKey {
		return nil, fmt.Errorf("redis key %q does not exist", key)
	}

	batch := r.BatchSize
	if batch <= 0 {
		batch = 64
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &redisHandle{
		client:  r.Client,
		key:     key,
		batch:   batch,
		timeout: timeout,
	}, nil
}

type redisHandle struct {
	client  redis.Cmdable
	key     string
	batch   int64
	timeout time.Duration
	pos     int64
	buf     []string
	done    bool
	closed  bool
}

func (h *redisHandle) ReadLine() (string, error) {
	if h.closed {
		return "", bferrors.ErrClosed
	}
	if len(h.buf) == 0 {
		if h.done {
			return "", io.EOF
		}
		if err := h.fill(); err != nil {
			return "", err
		}
		if len(h.buf) == 0 {
			return "", io.EOF
		}
	}

	line := h.buf[0]
	h.buf = h.buf[1:]
	return line, nil
}

func (h *redisHandle) fill() error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	vals, err := h.client.LRange(ctx, h.key, h.pos, h.pos+h.batch-1).Result()
	if err != nil {
		return err
	}
	h.pos += int64(len(vals))
	if int64(len(vals)) < h.batch {
		h.done = true
	}
	h.buf = vals
	return nil
}

func (h *redisHandle) Close() error {
	h.closed = true
	h.buf = nil
	return nil
}
