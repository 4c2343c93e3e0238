package service

import (
	"context"
	"encoding/json"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/atelierhq/storefront_api/internal/models"
	"github.com/atelierhq/storefront_api/internal/repository"
	"github.com/atelierhq/storefront_api/internal/sse"
	"github.com/atelierhq/storefront_api/internal/variant"
)

// memStore is an in-memory product store whose increments are atomic under
// one mutex, like a single-document update in Mongo.
type memStore struct {
	mu       sync.Mutex
	products map[string]*models.Product
	getErr   error
	incCalls int
}

func newMemStore(products ...*models.Product) *memStore {
	s := &memStore{products: make(map[string]*models.Product)}
	for _, p := range products {
		s.products[p.ID.Hex()] = p
	}
	return s
}

func (s *memStore) GetByID(_ context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	p, ok := s.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneProduct(p), nil
}

func (s *memStore) IncrementLeafStock(_ context.Context, productID string, addr variant.Address, delta int, requireAvailable bool) (repository.StockWrite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incCalls++
	p, ok := s.products[productID]
	if !ok {
		return repository.StockWrite{}, mongo.ErrNoDocuments
	}
	ref := stockRef(p, addr)
	if ref == nil {
		return repository.StockWrite{}, nil
	}
	if requireAvailable && delta < 0 && *ref < -delta {
		return repository.StockWrite{Stock: *ref}, nil
	}
	*ref += delta
	return repository.StockWrite{Applied: true, Stock: *ref}, nil
}

func (s *memStore) Create(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.products[p.ID.Hex()] = cloneProduct(p)
	return nil
}

func (s *memStore) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID.Hex()]; !ok {
		return mongo.ErrNoDocuments
	}
	s.products[p.ID.Hex()] = cloneProduct(p)
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.products, id)
	return nil
}

func (s *memStore) List(_ context.Context, filter *repository.ProductFilter) ([]models.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Product{}
	for _, p := range s.products {
		if filter.IsActive != nil && p.IsActive != *filter.IsActive {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, *cloneProduct(p))
	}
	return out, int64(len(out)), nil
}

// stock reads a counter under the lock.
func (s *memStore) stock(productID string, addr variant.Address) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *stockRef(s.products[productID], addr)
}

func stockRef(p *models.Product, addr variant.Address) *int {
	if p == nil || len(addr) == 0 {
		return nil
	}
	for i := range p.Variants {
		v := &p.Variants[i]
		if v.ID.Hex() != addr[0].GroupID {
			continue
		}
		for j := range v.Options {
			o := &v.Options[j]
			if o.ID.Hex() != addr[0].OptionID {
				continue
			}
			if len(addr) == 1 {
				return &o.Stock
			}
			for k := range o.SubVariants {
				sv := &o.SubVariants[k]
				if sv.ID.Hex() != addr[1].GroupID {
					continue
				}
				for l := range sv.Options {
					so := &sv.Options[l]
					if so.ID.Hex() != addr[1].OptionID {
						continue
					}
					if len(addr) == 2 {
						return &so.Stock
					}
					for m := range so.SubSubVariants {
						ssv := &so.SubSubVariants[m]
						if ssv.ID.Hex() != addr[2].GroupID {
							continue
						}
						for n := range ssv.Options {
							if ssv.Options[n].ID.Hex() == addr[2].OptionID {
								return &ssv.Options[n].Stock
							}
						}
					}
				}
			}
		}
	}
	return nil
}

func cloneProduct(p *models.Product) *models.Product {
	data, err := json.Marshal(p)
	if err != nil {
		panic(err)
	}
	var out models.Product
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return &out
}

type fakeInvalidator struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, ids...)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	stock  []sse.StockEvent
	orders []models.Order
}

func (n *recordingNotifier) NotifyStockChanged(e *sse.StockEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stock = append(n.stock, *e)
}

func (n *recordingNotifier) NotifyOrderCreated(o *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, *o)
}

func (n *recordingNotifier) NotifyOrderStatusChanged(o *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, *o)
}
