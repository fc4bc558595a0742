package steps

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const activeUsersKey = "steps:active"

// Store keeps the device-side step bookkeeping: counter state, the per-day
// buffer awaiting sync and the "counter active" flag.
type Store interface {
	LoadState(ctx context.Context, userID int64) (CounterState, error)
	SaveReading(ctx context.Context, userID int64, state CounterState, days map[string]int) error
	Buffered(ctx context.Context, userID int64) (map[string]int, error)
	RemoveDays(ctx context.Context, userID int64, days ...string) error
	SetActive(ctx context.Context, userID int64, active bool) error
	IsActive(ctx context.Context, userID int64) (bool, error)
	ActiveUsers(ctx context.Context) ([]int64, error)
}

type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

type stateRecord struct {
	Day            string `redis:"day"`
	Baseline       int64  `redis:"baseline"`
	Carry          int    `redis:"carry"`
	LastCumulative int64  `redis:"last_cumulative"`
	StepsToday     int    `redis:"steps_today"`
	LastForwarded  int    `redis:"last_forwarded"`
	BatteryLow     bool   `redis:"battery_low"`
	Initialized    bool   `redis:"initialized"`
	Timezone       string `redis:"timezone"`
}

func stateKey(userID int64) string {
	return fmt.Sprintf("steps:%d:state", userID)
}

func bufferKey(userID int64) string {
	return fmt.Sprintf("steps:%d:buffer", userID)
}

func (s *RedisStore) LoadState(ctx context.Context, userID int64) (CounterState, error) {
	cmd := s.client.HGetAll(ctx, stateKey(userID))
	values, err := cmd.Result()
	if err != nil {
		return CounterState{}, err
	}
	if len(values) == 0 {
		return CounterState{}, nil
	}

	var record stateRecord
	if err := cmd.Scan(&record); err != nil {
		return CounterState{}, fmt.Errorf("decode step state: %w", err)
	}
	return CounterState(record), nil
}

// SaveReading writes the state and the touched buffer days in one transaction.
func (s *RedisStore) SaveReading(ctx context.Context, userID int64, state CounterState, days map[string]int) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, stateKey(userID),
			"day", state.Day,
			"baseline", state.Baseline,
			"carry", state.Carry,
			"last_cumulative", state.LastCumulative,
			"steps_today", state.StepsToday,
			"last_forwarded", state.LastForwarded,
			"battery_low", state.BatteryLow,
			"initialized", state.Initialized,
			"timezone", state.Timezone,
		)
		for day, steps := range days {
			pipe.HSet(ctx, bufferKey(userID), day, steps)
		}
		return nil
	})
	return err
}

func (s *RedisStore) Buffered(ctx context.Context, userID int64) (map[string]int, error) {
	values, err := s.client.HGetAll(ctx, bufferKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	days := make(map[string]int, len(values))
	for day, raw := range values {
		steps, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("decode buffered steps for %s: %w", day, err)
		}
		days[day] = steps
	}
	return days, nil
}

func (s *RedisStore) RemoveDays(ctx context.Context, userID int64, days ...string) error {
	if len(days) == 0 {
		return nil
	}
	return s.client.HDel(ctx, bufferKey(userID), days...).Err()
}

func (s *RedisStore) SetActive(ctx context.Context, userID int64, active bool) error {
	if active {
		return s.client.SAdd(ctx, activeUsersKey, userID).Err()
	}
	return s.client.SRem(ctx, activeUsersKey, userID).Err()
}

func (s *RedisStore) IsActive(ctx context.Context, userID int64) (bool, error) {
	active, err := s.client.SIsMember(ctx, activeUsersKey, userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return active, err
}

func (s *RedisStore) ActiveUsers(ctx context.Context) ([]int64, error) {
	members, err := s.client.SMembers(ctx, activeUsersKey).Result()
	if err != nil {
		return nil, err
	}

	userIDs := make([]int64, 0, len(members))
	for _, member := range members {
		userID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode active user %q: %w", member, err)
		}
		userIDs = append(userIDs, userID)
	}
	return userIDs, nil
}
