package domain

import "slices"

// Partition assigns items to named buckets. Order lists the buckets in
// display order; every name in Order has an entry in Buckets.
type Partition struct {
	Order   []BucketName                   `json:"order"`
	Buckets map[BucketName][]ProductRecord `json:"buckets"`
}

// NewPartition creates an empty partition over the given buckets
func NewPartition(buckets []BucketName) Partition {
	p := Partition{
		Order:   make([]BucketName, 0, len(buckets)),
		Buckets: make(map[BucketName][]ProductRecord, len(buckets)),
	}
	for _, b := range buckets {
		p.AddBucket(b)
	}
	return p
}

// AddBucket appends an empty bucket if it is not already present
func (p *Partition) AddBucket(name BucketName) {
	if p.Buckets == nil {
		p.Buckets = make(map[BucketName][]ProductRecord)
	}
	if _, ok := p.Buckets[name]; ok {
		return
	}
	p.Order = append(p.Order, name)
	p.Buckets[name] = []ProductRecord{}
}

// HasBucket reports whether name is one of the partition's buckets
func (p Partition) HasBucket(name BucketName) bool {
	_, ok := p.Buckets[name]
	return ok
}

// Items returns the items of one bucket in order
func (p Partition) Items(name BucketName) []ProductRecord {
	return p.Buckets[name]
}

// Locate finds the bucket and position of an item by id
func (p Partition) Locate(itemID string) (BucketName, int, bool) {
	for _, name := range p.Order {
		for i, item := range p.Buckets[name] {
			if item.ID == itemID {
				return name, i, true
			}
		}
	}
	return "", -1, false
}

// Len returns the total number of items across all buckets
func (p Partition) Len() int {
	n := 0
	for _, items := range p.Buckets {
		n += len(items)
	}
	return n
}

// Clone returns a copy that shares no slices or maps with p
func (p Partition) Clone() Partition {
	out := Partition{
		Order:   slices.Clone(p.Order),
		Buckets: make(map[BucketName][]ProductRecord, len(p.Buckets)),
	}
	for name, items := range p.Buckets {
		out.Buckets[name] = slices.Clone(items)
	}
	return out
}
