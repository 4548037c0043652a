package usecase

import (
	"slices"

	"github.com/stockboard/backend/internal/domain"
)

// BucketConfig decides which bucket each item lands in
type BucketConfig struct {
	// KnownBuckets are always present, in this order
	KnownBuckets []domain.BucketName

	// FallbackBucket receives items whose category is not a bucket.
	// Empty means such items are left out of the partition.
	FallbackBucket domain.BucketName

	// DiscoverBuckets adds a bucket for every observed category,
	// after the known ones, in order of first appearance
	DiscoverBuckets bool
}

// DefaultBucketConfig is the fixed three-bucket board with unknown categories dropped
func DefaultBucketConfig() BucketConfig {
	return BucketConfig{KnownBuckets: domain.DefaultBuckets()}
}

// Buckets returns the configured bucket set, fallback included
func (c BucketConfig) Buckets() []domain.BucketName {
	buckets := slices.Clone(c.KnownBuckets)
	if c.FallbackBucket != "" && !slices.Contains(buckets, c.FallbackBucket) {
		buckets = append(buckets, c.FallbackBucket)
	}
	return buckets
}

// Rebuild partitions items into buckets. Items keep source order within a
// bucket and an id is only placed once (first occurrence wins).
func Rebuild(items []domain.ProductRecord, config BucketConfig) domain.Partition {
	partition := domain.NewPartition(config.Buckets())
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}

		bucket, ok := route(&partition, item, config)
		if !ok {
			continue
		}
		partition.Buckets[bucket] = append(partition.Buckets[bucket], item)
	}

	return partition
}

func route(partition *domain.Partition, item domain.ProductRecord, config BucketConfig) (domain.BucketName, bool) {
	category := domain.BucketName(item.Category)

	if item.Category != "" {
		if partition.HasBucket(category) {
			return category, true
		}
		if config.DiscoverBuckets {
			partition.AddBucket(category)
			return category, true
		}
	}

	if config.FallbackBucket != "" {
		return config.FallbackBucket, true
	}
	return "", false
}
