package messaging

import (
	"context"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Broadcaster pushes live notification payloads to connected browsers.
type Broadcaster interface {
	Publish(ctx context.Context, userID uint, payload string) error
	// Subscribe returns a channel of payloads; cancel releases the subscription.
	Subscribe(ctx context.Context, userID uint) (<-chan string, func(), error)
}

func userChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}

type redisBroadcaster struct {
	client *redis.Client
}

func NewRedisBroadcaster(client *redis.Client) Broadcaster {
	return &redisBroadcaster{client: client}
}

func (b *redisBroadcaster) Publish(ctx context.Context, userID uint, payload string) error {
	return b.client.Publish(ctx, userChannel(userID), payload).Err()
}

func (b *redisBroadcaster) Subscribe(ctx context.Context, userID uint) (<-chan string, func(), error) {
	sub := b.client.Subscribe(ctx, userChannel(userID))
	// wait for the confirmation so a dead server fails here instead of in the stream
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, err
	}

	out := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			sub.Close()
		})
	}
	return out, cancel, nil
}
