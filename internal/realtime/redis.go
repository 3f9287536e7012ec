package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Windi-Fikriyansyah/contractpay_be/internal/config"
	"github.com/Windi-Fikriyansyah/contractpay_be/internal/services/payment"
)

const channelPrefix = "notifications:"

// NewRedis creates a new Redis client
func NewRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func Channel(profileID uuid.UUID) string {
	return channelPrefix + profileID.String()
}

// Notification is the payload published to a profile channel and pushed
// unchanged to that profile's websocket connections.
type Notification struct {
	Type  string               `json:"type"`
	Event payment.JobPaidEvent `json:"event"`
}

// Publisher fans payment events out to every API instance through redis.
type Publisher struct {
	rdb redis.UniversalClient
}

func NewPublisher(rdb redis.UniversalClient) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) JobPaid(ctx context.Context, event payment.JobPaidEvent) error {
	payload, err := json.Marshal(Notification{Type: "job_paid", Event: event})
	if err != nil {
		return err
	}

	for _, id := range []uuid.UUID{event.ClientID, event.ContractorID} {
		if err := p.rdb.Publish(ctx, Channel(id), payload).Err(); err != nil {
			return fmt.Errorf("publish %s: %w", Channel(id), err)
		}
	}
	return nil
}

// Subscribe forwards every profile notification published on redis to the
// local hub. It blocks until ctx is done.
func Subscribe(ctx context.Context, rdb redis.UniversalClient, hub *Hub, log zerolog.Logger) error {
	sub := rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("psubscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			profileID, err := ParseChannel(msg.Channel)
			if err != nil {
				log.Warn().Err(err).Str("channel", msg.Channel).Msg("skip notification")
				continue
			}
			hub.SendRaw(profileID, []byte(msg.Payload))
		}
	}
}

func ParseChannel(channel string) (uuid.UUID, error) {
	raw, ok := strings.CutPrefix(channel, channelPrefix)
	if !ok {
		return uuid.Nil, fmt.Errorf("unexpected channel %q", channel)
	}
	return uuid.Parse(raw)
}
