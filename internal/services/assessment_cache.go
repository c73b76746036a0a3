package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quoting-service/internal/models"
	"quoting-service/internal/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const assessmentCacheTTL = 24 * time.Hour

// AssessmentCache keeps the latest risk assessment per quote in Redis. The
// database remains the system of record; every rescore overwrites the entry.
type AssessmentCache struct {
	client *redis.Client
}

func NewAssessmentCache(client *redis.Client) *AssessmentCache {
	return &AssessmentCache{client: client}
}

func assessmentKey(quoteID uuid.UUID) string {
	return fmt.Sprintf("quote:assessment:%s", quoteID)
}

// Get returns the cached assessment, or nil on a cache miss.
func (c *AssessmentCache) Get(ctx context.Context, quoteID uuid.UUID) (*models.RiskAssessment, error) {
	raw, err := c.client.Get(ctx, assessmentKey(quoteID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached assessment: %w", err)
	}

	var assessment models.RiskAssessment
	if err := utils.DeserializeModel(raw, &assessment); err != nil {
		return nil, fmt.Errorf("failed to decode cached assessment: %w", err)
	}

	return &assessment, nil
}

func (c *AssessmentCache) Set(ctx context.Context, quoteID uuid.UUID, assessment models.RiskAssessment) error {
	raw, err := utils.SerializeModel(assessment)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}

	if err := c.client.Set(ctx, assessmentKey(quoteID), raw, assessmentCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache assessment: %w", err)
	}

	return nil
}

// Delete drops the cached entry so the next read falls back to the database.
func (c *AssessmentCache) Delete(ctx context.Context, quoteID uuid.UUID) error {
	if err := c.client.Del(ctx, assessmentKey(quoteID)).Err(); err != nil {
		return fmt.Errorf("failed to drop cached assessment: %w", err)
	}

	return nil
}
