package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPartition(t *testing.T) {
	p := NewPartition([]BucketName{"A", "B", "A"})

	assert.Equal(t, []BucketName{"A", "B"}, p.Order)
	assert.True(t, p.HasBucket("A"))
	assert.False(t, p.HasBucket("C"))
	assert.NotNil(t, p.Items("B"))
	assert.Zero(t, p.Len())
}

func TestPartition_AddBucketOnZeroValue(t *testing.T) {
	var p Partition
	p.AddBucket("X")

	assert.Equal(t, []BucketName{"X"}, p.Order)
	assert.True(t, p.HasBucket("X"))
}

func TestPartition_Locate(t *testing.T) {
	p := NewPartition(DefaultBuckets())
	p.Buckets[BucketCategory2] = []ProductRecord{{ID: "a"}, {ID: "b"}}

	bucket, idx, ok := p.Locate("b")
	require.True(t, ok)
	assert.Equal(t, BucketCategory2, bucket)
	assert.Equal(t, 1, idx)

	_, idx, ok = p.Locate("zz")
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}

func TestPartition_CloneIsIndependent(t *testing.T) {
	p := NewPartition(DefaultBuckets())
	p.Buckets[BucketCategory1] = []ProductRecord{{ID: "a", Name: "A"}}

	clone := p.Clone()
	clone.Buckets[BucketCategory1][0].Name = "changed"
	clone.Buckets[BucketCategory1] = append(clone.Buckets[BucketCategory1], ProductRecord{ID: "b"})
	clone.AddBucket("Extra")

	assert.Equal(t, "A", p.Buckets[BucketCategory1][0].Name)
	assert.Equal(t, 1, p.Len())
	assert.False(t, p.HasBucket("Extra"))
	assert.Len(t, p.Order, 3)
}
