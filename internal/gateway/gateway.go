// Package gateway is the console's data-access layer: pgx repositories over
// the backing store plus the change-feed publishing that follows every
// successful order write.
package gateway

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/rjdelacruz/go-fuel-console.git/internal/kafka"
	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

// Publisher is the producer side of the change feed.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Gateway struct {
	DB       *pgxpool.Pool
	Producer Publisher
	Service  string
	Log      *zap.Logger
}

// publishChange emits a change event after a committed write. The feed is
// fire-and-forget here: the write already succeeded, a lost event is
// repaired by the next full load.
func (g *Gateway) publishChange(kind orders.ChangeKind, rec orders.ChangeRecord) {
	if g.Producer == nil {
		return
	}
	ev := orders.ChangeEvent{
		EventID:    uuid.NewString(),
		Kind:       kind,
		OccurredAt: time.Now().UTC(),
		Producer:   g.Service,
		Order:      rec,
	}
	g.Producer.Publish(orders.PartitionKey(rec.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-change-kind", Value: []byte(kind)},
	)
}
