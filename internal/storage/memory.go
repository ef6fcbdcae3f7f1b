package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
	"github.com/rmagee/quartet-integrations-sub000/pkg/gs1"
)

// Memory is an in-memory Store
type Memory struct {
	mu         sync.RWMutex
	tradeItems map[string]TradeItem
	companies  map[string]Company
	entries    map[string]Entry
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		tradeItems: make(map[string]TradeItem),
		companies:  make(map[string]Company),
		entries:    make(map[string]Entry),
	}
}

// Close implements Store
func (m *Memory) Close(context.Context) error { return nil }

// Ping implements Store
func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) PutTradeItem(_ context.Context, item *TradeItem) error {
	if item.GTIN14 == "" {
		return fmt.Errorf("trade item has no GTIN")
	}
	item.UpdatedAt = time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tradeItems[item.GTIN14] = *item
	return nil
}

func (m *Memory) GetTradeItem(_ context.Context, gtin14 string) (*TradeItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.tradeItems[gtin14]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *Memory) PutCompany(_ context.Context, company *Company) error {
	if company.ID == "" {
		company.ID = company.CompanyPrefix
	}
	if company.ID == "" {
		return fmt.Errorf("company has neither ID nor company prefix")
	}
	company.UpdatedAt = time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[company.ID] = *company
	return nil
}

func (m *Memory) TradeItemByGTIN(ctx context.Context, gtin14 string) (*gs1.TradeItem, error) {
	item, err := m.GetTradeItem(ctx, gtin14)
	if item == nil || err != nil {
		return nil, err
	}
	return item.GS1(), nil
}

// CompaniesByPrefix returns the companies with exactly this prefix,
// ordered by ID
func (m *Memory) CompaniesByPrefix(_ context.Context, prefix string) ([]gs1.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []gs1.Company
	for _, c := range m.companies {
		if c.CompanyPrefix == prefix {
			out = append(out, c.GS1())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) PutEntry(_ context.Context, entry *Entry) error {
	if entry.Identifier == "" {
		return fmt.Errorf("entry has no identifier")
	}
	entry.UpdatedAt = time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Identifier] = *entry
	return nil
}

func (m *Memory) EntriesByEPCs(_ context.Context, epcs []string) ([]epcis.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]epcis.Entry, 0, len(epcs))
	for _, epc := range epcs {
		if e, ok := m.entries[epc]; ok {
			out = append(out, e.EPCIS())
		}
	}
	return out, nil
}

// Children returns the entries whose parent is entry, ordered by
// identifier
func (m *Memory) Children(_ context.Context, entry epcis.Entry) ([]epcis.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []epcis.Entry
	for _, e := range m.entries {
		if e.ParentID == entry.Identifier {
			out = append(out, e.EPCIS())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out, nil
}
