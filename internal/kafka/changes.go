package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
	"github.com/rjdelacruz/go-fuel-console.git/internal/redisx"
)

// ChangeSource adapts the order-changes topic into a stream of decoded
// ChangeEvents. Events already seen (by event id) are dropped, so redelivery
// after a rebalance does not re-run reconciliation.
type ChangeSource struct {
	Consumer *Consumer
	Redis    *redis.Client
	Service  string
	Log      *zap.Logger
}

func (s *ChangeSource) Run(ctx context.Context, apply func(orders.ChangeEvent)) error {
	return s.Consumer.Start(ctx, func(ctx context.Context, m kafkago.Message) error {
		var ev orders.ChangeEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			// poison message: log and commit past it
			s.Log.Warn("undecodable change event", zap.Error(err))
			return nil
		}

		if s.Redis != nil && ev.EventID != "" {
			dkey := fmt.Sprintf(redisx.KeyDedup, s.Service, ev.EventID)
			if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
				return nil
			}
			_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
		}

		apply(ev)
		return nil
	})
}
