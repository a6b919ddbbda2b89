package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/rinkboard/internal/rebuild"
)

// DefaultStream receives one entry per completed rebuild.
const DefaultStream = "rinkboard.rebuilds"

// RebuildEvent is the payload announcing a completed rebuild.
type RebuildEvent struct {
	RunID         string   `json:"run_id"`
	Seasons       []string `json:"seasons"`
	CurrentSeason string   `json:"current_season"`
	Games         int      `json:"games"`
	Players       int      `json:"players"`
	SoftFailures  int      `json:"soft_failures"`
	FinishedAt    string   `json:"finished_at"`
}

// NewRebuildEvent summarizes a rebuild result.
func NewRebuildEvent(res *rebuild.Result) RebuildEvent {
	seasons := make([]string, 0, len(res.Seasons))
	for _, s := range res.Seasons {
		seasons = append(seasons, s.Season)
	}

	return RebuildEvent{
		RunID:         res.RunID,
		Seasons:       seasons,
		CurrentSeason: res.RootIndex.CurrentSeason,
		Games:         res.GameCount(),
		Players:       res.PlayerCount(),
		SoftFailures:  res.SoftFailures(),
		FinishedAt:    res.FinishedAt.Format(time.RFC3339),
	}
}

// RedisPublisher publishes rebuild events to a Redis stream
type RedisPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisPublisher creates a new Redis stream publisher
func NewRedisPublisher(redisURL, stream string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisStreamPublisher(client, stream), nil
}

// NewRedisStreamPublisher creates a publisher from an existing client
func NewRedisStreamPublisher(client *redis.Client, stream string) *RedisPublisher {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisPublisher{
		client: client,
		stream: stream,
	}
}

// Close closes the Redis connection
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}

// Name identifies the sink in diagnostics.
func (rp *RedisPublisher) Name() string {
	return "redis-stream:" + rp.stream
}

// Publish appends the rebuild summary to the stream.
func (rp *RedisPublisher) Publish(ctx context.Context, res *rebuild.Result) error {
	data, err := json.Marshal(NewRebuildEvent(res))
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: rp.stream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
