package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"metacalc/internal/projection"
)

const (
	trafficLightKey = "charts:traffic-light"
	weightedBarKey  = "charts:weighted-bar"
	chartTTL        = 5 * time.Minute
)

// ProjectionCache fronts the chart projections. A miss returns nil with no
// error; entries are invalidated whenever the study store persists.
type ProjectionCache interface {
	GetTrafficLight(ctx context.Context) (*projection.TrafficLight, error)
	SetTrafficLight(ctx context.Context, tl *projection.TrafficLight) error
	GetWeightedBars(ctx context.Context) ([]projection.BarRow, error)
	SetWeightedBars(ctx context.Context, rows []projection.BarRow) error
	Invalidate(ctx context.Context) error
}

type projectionCache struct {
	client *redis.Client
}

// NewProjectionCache creates a Redis-backed projection cache.
func NewProjectionCache(client *redis.Client) ProjectionCache {
	return &projectionCache{client: client}
}

func (c *projectionCache) GetTrafficLight(ctx context.Context) (*projection.TrafficLight, error) {
	data, err := c.client.Get(ctx, trafficLightKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tl projection.TrafficLight
	if err := json.Unmarshal([]byte(data), &tl); err != nil {
		return nil, err
	}
	return &tl, nil
}

func (c *projectionCache) SetTrafficLight(ctx context.Context, tl *projection.TrafficLight) error {
	data, err := json.Marshal(tl)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, trafficLightKey, data, chartTTL).Err()
}

func (c *projectionCache) GetWeightedBars(ctx context.Context) ([]projection.BarRow, error) {
	data, err := c.client.Get(ctx, weightedBarKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rows []projection.BarRow
	if err := json.Unmarshal([]byte(data), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *projectionCache) SetWeightedBars(ctx context.Context, rows []projection.BarRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, weightedBarKey, data, chartTTL).Err()
}

func (c *projectionCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, trafficLightKey, weightedBarKey).Err()
}
