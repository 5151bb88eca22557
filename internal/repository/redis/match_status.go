package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zksprint/land-battle-arbiter/internal/model"
)

func statusKey(id uint64) string {
	return "match:" + strconv.FormatUint(id, 10) + ":status"
}

// statusTTL bounds how long a stale mirror entry can outlive its match.
const statusTTL = 24 * time.Hour

// SetStatus stores the live status snapshot for a match.
func (c *Client) SetStatus(ctx context.Context, id uint64, status model.MatchStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal match status: %w", err)
	}
	if err := c.rdb.Set(ctx, statusKey(id), data, statusTTL).Err(); err != nil {
		return fmt.Errorf("set match status: %w", err)
	}
	return nil
}

// GetStatus retrieves the live status snapshot, or nil when absent.
func (c *Client) GetStatus(ctx context.Context, id uint64) (*model.MatchStatus, error) {
	data, err := c.rdb.Get(ctx, statusKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get match status: %w", err)
	}
	var status model.MatchStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("unmarshal match status: %w", err)
	}
	return &status, nil
}

// DeleteStatus removes the mirror entry when a match actor exits without a
// winner.
func (c *Client) DeleteStatus(ctx context.Context, id uint64) error {
	if err := c.rdb.Del(ctx, statusKey(id)).Err(); err != nil {
		return fmt.Errorf("delete match status: %w", err)
	}
	return nil
}
