package queries

import "context"

// StockReader is the read-only slice of the coupon inventory.
type StockReader interface {
	Count(ctx context.Context, tierKey string) (int, error)
}

type StockQueries interface {
	Count(ctx context.Context, tierKey string) (int, error)
}

type stockQueriesImpl struct {
	inventory StockReader
}

func NewStockQueries(inventory StockReader) StockQueries {
	return &stockQueriesImpl{inventory: inventory}
}

func (q *stockQueriesImpl) Count(ctx context.Context, tierKey string) (int, error) {
	return q.inventory.Count(ctx, tierKey)
}
