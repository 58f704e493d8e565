package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/diewo77/traiteur/internal/models"
)

// changeMessage is what travels on the redis channel.
type changeMessage struct {
	Origin      string   `json:"origin"`
	Collections []string `json:"collections"`
}

// Bridge relays change notifications between server processes sharing one
// database, so every process refreshes its subscribers.
type Bridge struct {
	client  redis.UniversalClient
	channel string
	store   *Store
	origin  string
	log     *zap.Logger
}

// NewBridge returns a bridge for store. It does not publish until
// store.SetPublisher(bridge) is called.
func NewBridge(client redis.UniversalClient, channel string, store *Store, log *zap.Logger) *Bridge {
	return &Bridge{
		client:  client,
		channel: channel,
		store:   store,
		origin:  Mint(),
		log:     log.Named("bridge"),
	}
}

// Publish announces changed collections to the other processes.
func (b *Bridge) Publish(ctx context.Context, collections []string) error {
	body, err := json.Marshal(changeMessage{Origin: b.origin, Collections: collections})
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, body).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run listens until ctx ends.
func (b *Bridge) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	b.log.Info("listening for changes", zap.String("channel", b.channel))

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle(ctx, msg.Payload)
		}
	}
}

// handle refreshes the collections named by payload unless this process
// sent it.
func (b *Bridge) handle(ctx context.Context, payload string) {
	var msg changeMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		b.log.Warn("bad change message", zap.Error(err))
		return
	}
	if msg.Origin == b.origin {
		return
	}
	var valid []string
	for _, c := range msg.Collections {
		if models.IsCollection(c) {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		return
	}
	if err := b.store.Refresh(ctx, valid...); err != nil {
		b.log.Error("refresh from bridge", zap.Error(err))
	}
}
