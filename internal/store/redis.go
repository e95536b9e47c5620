// Package store persists scan output and tracked positions in Redis.
//
// Opportunities are written as flat JSON documents keyed by a generated id,
// with a recency index (a sorted set scored by save time) so the latest
// candidates can be listed without scanning keys. Positions opened from an
// opportunity live under their own keys plus an active-id set.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/unoinvest/rco-scanner/internal/logger"
	"github.com/unoinvest/rco-scanner/internal/scanner"
)

const (
	oppKeyPrefix = "rco:opp:"
	posKeyPrefix = "rco:pos:"
	recentKey    = "rco:opps:recent"
	activeKey    = "rco:pos:active"

	// Saved opportunities describe contracts at most 90 days out; keep a
	// little slack for post-expiry review.
	opportunityTTL = 120 * 24 * time.Hour
)

// StoredOpportunity is an Opportunity plus persistence identity.
type StoredOpportunity struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	scanner.Opportunity
}

// Position tracks an opportunity the user actually entered.
type Position struct {
	ID            string     `json:"id"`
	OpportunityID string     `json:"opportunity_id"`
	OpenedAt      time.Time  `json:"opened_at"`
	ClosedAt      *time.Time `json:"closed_at,omitempty"`
	// ResultValue is the realized per-lot result recorded at close.
	ResultValue *float64 `json:"result_value,omitempty"`

	Opportunity scanner.Opportunity `json:"opportunity"`
}

// Active reports whether the position is still open.
func (p Position) Active() bool { return p.ClosedAt == nil }

// commands is the slice of the go-redis API the store touches. *redis.Client
// satisfies it; tests substitute an in-memory fake.
type commands interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	ZRevRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	TxPipeline() redis.Pipeliner
	Close() error
}

// Store wraps the Redis connection.
type Store struct {
	rdb commands
	log *logrus.Entry
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr, password string, db int) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return &Store{rdb: rdb, log: logger.WithComponent("store")}, nil
}

// Close releases the connection.
func (s *Store) Close() error { return s.rdb.Close() }

// SaveOpportunity persists one opportunity and indexes it by save time.
func (s *Store) SaveOpportunity(ctx context.Context, opp scanner.Opportunity) (string, error) {
	rec := StoredOpportunity{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Opportunity: opp,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal opportunity: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, oppKeyPrefix+rec.ID, b, opportunityTTL)
	pipe.ZAdd(ctx, recentKey, redis.Z{Score: float64(rec.CreatedAt.Unix()), Member: rec.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("save opportunity %s: %w", rec.ID, err)
	}

	s.log.WithFields(logger.Fields{
		"id":         rec.ID,
		"strategy":   opp.Strategy,
		"underlying": opp.Underlying,
		"score":      opp.Score,
	}).Debug("opportunity saved")

	return rec.ID, nil
}

// SaveResults persists every opportunity in a scan run. Per-item failures are
// logged and skipped so one bad write does not lose the batch.
func (s *Store) SaveResults(ctx context.Context, results []scanner.Result) int {
	saved := 0
	for _, res := range results {
		for _, opp := range res.All() {
			if _, err := s.SaveOpportunity(ctx, opp); err != nil {
				s.log.WithError(err).Warnf("dropping opportunity for %s", opp.Underlying)
				continue
			}
			saved++
		}
	}
	return saved
}

// GetOpportunity loads one saved opportunity. A missing or expired id yields
// redis.Nil.
func (s *Store) GetOpportunity(ctx context.Context, id string) (StoredOpportunity, error) {
	var rec StoredOpportunity
	b, err := s.rdb.Get(ctx, oppKeyPrefix+id).Bytes()
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(b, &rec); err != nil {
		return rec, fmt.Errorf("decode opportunity %s: %w", id, err)
	}
	return rec, nil
}

// RecentOpportunities lists up to limit saved opportunities, newest first,
// keeping only those at or above minScore. Index entries whose documents
// have expired are pruned as they are found.
func (s *Store) RecentOpportunities(ctx context.Context, limit, minScore int) ([]StoredOpportunity, error) {
	ids, err := s.rdb.ZRevRange(ctx, recentKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read recency index: %w", err)
	}

	out := make([]StoredOpportunity, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetOpportunity(ctx, id)
		if err == redis.Nil {
			s.rdb.ZRem(ctx, recentKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if rec.Score >= minScore {
			out = append(out, rec)
		}
	}
	return out, nil
}

// OpenPosition records that the user entered a saved opportunity.
func (s *Store) OpenPosition(ctx context.Context, opportunityID string) (Position, error) {
	rec, err := s.GetOpportunity(ctx, opportunityID)
	if err != nil {
		return Position{}, fmt.Errorf("load opportunity %s: %w", opportunityID, err)
	}

	pos := Position{
		ID:            uuid.NewString(),
		OpportunityID: rec.ID,
		OpenedAt:      time.Now().UTC(),
		Opportunity:   rec.Opportunity,
	}
	if err := s.writePosition(ctx, pos, true); err != nil {
		return Position{}, err
	}
	return pos, nil
}

// ClosePosition marks a position closed with its realized per-lot result.
func (s *Store) ClosePosition(ctx context.Context, id string, result float64) (Position, error) {
	pos, err := s.GetPosition(ctx, id)
	if err != nil {
		return Position{}, err
	}
	if !pos.Active() {
		return pos, fmt.Errorf("position %s already closed", id)
	}

	now := time.Now().UTC()
	pos.ClosedAt = &now
	pos.ResultValue = &result
	if err := s.writePosition(ctx, pos, false); err != nil {
		return Position{}, err
	}
	return pos, nil
}

// GetPosition loads one position.
func (s *Store) GetPosition(ctx context.Context, id string) (Position, error) {
	var pos Position
	b, err := s.rdb.Get(ctx, posKeyPrefix+id).Bytes()
	if err != nil {
		return pos, err
	}
	if err := json.Unmarshal(b, &pos); err != nil {
		return pos, fmt.Errorf("decode position %s: %w", id, err)
	}
	return pos, nil
}

// ActivePositions lists every open position.
func (s *Store) ActivePositions(ctx context.Context) ([]Position, error) {
	ids, err := s.rdb.SMembers(ctx, activeKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read active set: %w", err)
	}

	out := make([]Position, 0, len(ids))
	for _, id := range ids {
		pos, err := s.GetPosition(ctx, id)
		if err == redis.Nil {
			s.rdb.SRem(ctx, activeKey, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, pos)
	}
	return out, nil
}

func (s *Store) writePosition(ctx context.Context, pos Position, active bool) error {
	b, err := json.Marshal(pos)
	if err != nil {
		return fmt.Errorf("marshal position: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, posKeyPrefix+pos.ID, b, 0)
	if active {
		pipe.SAdd(ctx, activeKey, pos.ID)
	} else {
		pipe.SRem(ctx, activeKey, pos.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write position %s: %w", pos.ID, err)
	}
	return nil
}
