package compliance

import (
	"context"
	"errors"
	"strconv"
	"time"

	"goodplay-backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var ErrScoreOutOfRange = errors.New("Compliance score must be between 0 and 100")

// cacheTTL bounds staleness of cached compliance scores.
const cacheTTL = 10 * time.Minute

// Provider reads the current compliance score of an ONLUS through a Redis
// cache with a database fallback. A broken or absent cache degrades to the
// database silently.
type Provider struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// CurrentScore returns the latest recorded score, nil when none exists.
func (p *Provider) CurrentScore(ctx context.Context, onlusID uuid.UUID) (*float64, error) {
	if p.Redis != nil {
		if cached, err := p.Redis.Get(ctx, cacheKey(onlusID)).Result(); err == nil {
			if score, err := strconv.ParseFloat(cached, 64); err == nil {
				return &score, nil
			}
		}
	}

	var record models.ComplianceScore
	err := p.DB.WithContext(ctx).
		Where("onlus_id = ?", onlusID).
		Order("assessed_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if p.Redis != nil {
		p.Redis.Set(ctx, cacheKey(onlusID), strconv.FormatFloat(record.Score, 'f', -1, 64), cacheTTL)
	}
	return &record.Score, nil
}

// RecordScore stores a new assessment and invalidates the cached value.
func (p *Provider) RecordScore(ctx context.Context, onlusID uuid.UUID, score float64, assessedAt time.Time) (*models.ComplianceScore, error) {
	if score < 0 || score > 100 {
		return nil, ErrScoreOutOfRange
	}
	if assessedAt.IsZero() {
		assessedAt = time.Now().UTC()
	}
	record := models.ComplianceScore{
		OnlusID:    onlusID,
		Score:      score,
		AssessedAt: assessedAt,
	}
	if err := p.DB.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	if p.Redis != nil {
		p.Redis.Del(ctx, cacheKey(onlusID))
	}
	return &record, nil
}

func cacheKey(onlusID uuid.UUID) string {
	return "compliance:score:" + onlusID.String()
}
