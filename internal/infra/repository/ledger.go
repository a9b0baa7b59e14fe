package repository

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"coupon-shop-bot/internal/domain/order"
	"coupon-shop-bot/internal/infra"
	"coupon-shop-bot/internal/infra/docstore"
)

const ledgerDocument = "orders.json"

// LedgerRepository stores the whole order ledger as one document. Every
// mutation rewrites the full snapshot, and the document store serializes
// mutating calls, so a reader never observes a partial write.
type LedgerRepository struct {
	store  docstore.Store
	logger *slog.Logger
}

func NewLedgerRepository(store docstore.Store, logger *slog.Logger) *LedgerRepository {
	return &LedgerRepository{store: store, logger: logger}
}

func (r *LedgerRepository) Create(ctx context.Context, o *order.Order) error {
	return r.store.Update(ctx, ledgerDocument, func(current []byte) ([]byte, error) {
		records, err := r.decode(current)
		if err != nil {
			return nil, err
		}
		if _, exists := records[o.ID()]; exists {
			return nil, infra.NewRepoErr(infra.KindDuplicateKey, "order id already exists")
		}
		records[o.ID()] = recordFromOrder(o)
		return r.encode(records)
	})
}

func (r *LedgerRepository) Get(ctx context.Context, orderID string) (*order.Order, error) {
	current, err := r.store.Load(ctx, ledgerDocument)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindStorageFailure, "failed to load ledger", err)
	}
	records, err := r.decode(current)
	if err != nil {
		return nil, err
	}
	rec, ok := records[orderID]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "order not found")
	}
	return orderFromRecord(rec), nil
}

// UpdateStatus applies mutate to the stored order and persists the whole
// ledger before returning the mutated order. When mutate fails nothing is
// written.
func (r *LedgerRepository) UpdateStatus(ctx context.Context, orderID string, mutate func(*order.Order) error) (*order.Order, error) {
	var updated *order.Order
	err := r.store.Update(ctx, ledgerDocument, func(current []byte) ([]byte, error) {
		records, err := r.decode(current)
		if err != nil {
			return nil, err
		}
		rec, ok := records[orderID]
		if !ok {
			return nil, infra.NewRepoErr(infra.KindNotFound, "order not found")
		}
		o := orderFromRecord(rec)
		if err := mutate(o); err != nil {
			return nil, err
		}
		records[orderID] = recordFromOrder(o)
		updated = o
		return r.encode(records)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *LedgerRepository) Delete(ctx context.Context, orderID string) error {
	return r.store.Update(ctx, ledgerDocument, func(current []byte) ([]byte, error) {
		records, err := r.decode(current)
		if err != nil {
			return nil, err
		}
		if _, ok := records[orderID]; !ok {
			return nil, docstore.ErrAbort
		}
		delete(records, orderID)
		return r.encode(records)
	})
}

func (r *LedgerRepository) Scan(ctx context.Context) ([]*order.Order, error) {
	current, err := r.store.Load(ctx, ledgerDocument)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindStorageFailure, "failed to load ledger", err)
	}
	records, err := r.decode(current)
	if err != nil {
		return nil, err
	}
	orders := make([]*order.Order, 0, len(records))
	for _, rec := range records {
		orders = append(orders, orderFromRecord(rec))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID() < orders[j].ID() })
	return orders, nil
}

// SweepPending removes every order that has expired as of now, batching all
// removals into a single persisted snapshot. The expiry predicate itself
// belongs to the order entity. It returns the ids of the removed orders.
func (r *LedgerRepository) SweepPending(ctx context.Context, now time.Time, ttl time.Duration) ([]string, error) {
	var removed []string
	err := r.store.Update(ctx, ledgerDocument, func(current []byte) ([]byte, error) {
		records, err := r.decode(current)
		if err != nil {
			return nil, err
		}
		for id, rec := range records {
			if orderFromRecord(rec).HasExpired(now, ttl) {
				delete(records, id)
				removed = append(removed, id)
			}
		}
		if len(removed) == 0 {
			return nil, docstore.ErrAbort
		}
		return r.encode(records)
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(removed)
	return removed, nil
}

func (r *LedgerRepository) decode(body []byte) (map[string]orderRecord, error) {
	if len(body) == 0 {
		return make(map[string]orderRecord), nil
	}
	var records map[string]orderRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindStorageFailure, "failed to decode ledger", err)
	}
	if records == nil {
		records = make(map[string]orderRecord)
	}
	return records, nil
}

func (r *LedgerRepository) encode(records map[string]orderRecord) ([]byte, error) {
	body, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindStorageFailure, "failed to encode ledger", err)
	}
	return body, nil
}
