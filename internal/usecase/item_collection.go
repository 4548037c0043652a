package usecase

import (
	"slices"
	"sync"

	"github.com/stockboard/backend/internal/domain"
)

// ItemCollection is the host's shared list of resolved products.
// Subscribers are signalled after every change; signals coalesce.
type ItemCollection struct {
	mu     sync.Mutex
	items  []domain.ProductRecord
	subs   map[int]chan struct{}
	nextID int
}

// NewItemCollection creates an empty collection
func NewItemCollection() *ItemCollection {
	return &ItemCollection{subs: make(map[int]chan struct{})}
}

// Append adds a record and notifies subscribers
func (c *ItemCollection) Append(record domain.ProductRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.items, record)
	for _, ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Items returns a copy of the collection
func (c *ItemCollection) Items() []domain.ProductRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Len returns the number of records
func (c *ItemCollection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Subscribe returns a change channel and a function that ends the subscription
func (c *ItemCollection) Subscribe() (<-chan struct{}, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	ch := make(chan struct{}, 1)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
		})
	}
}
