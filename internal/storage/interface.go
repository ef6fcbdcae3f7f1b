// Package storage provides the master data and EPCIS entry stores the
// adapter steps query.
//
// # Interface Design
//
// The storage layer is organized into focused interfaces:
//
//   - [MasterDataStore]: trade items and companies, used to resolve
//     company prefix lengths. It satisfies gs1.MasterData.
//   - [EntryStore]: persisted identifiers and their packing hierarchy.
//     It satisfies the entry store of the auto commission step.
//
// The [Store] interface combines both sub-stores for convenience.
//
// # Implementations
//
// [Memory] keeps everything in maps and is meant for tests and small
// deployments. The mongodb sub-package provides a MongoDB implementation.
//
// # Lookups
//
// Single record lookups return nil without error when nothing matches.
// List lookups return an empty result.
//
// # Concurrency
//
// All store implementations must be safe for concurrent use from multiple
// goroutines.
package storage

import (
	"context"
	"time"

	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
	"github.com/rmagee/quartet-integrations-sub000/pkg/gs1"
)

// Store is the main storage interface combining all sub-stores
type Store interface {
	MasterDataStore
	EntryStore

	// Close releases storage resources
	Close(ctx context.Context) error

	// Ping checks database connectivity
	Ping(ctx context.Context) error
}

// MasterDataStore manages trade items and companies
type MasterDataStore interface {
	// PutTradeItem creates or replaces a trade item
	PutTradeItem(ctx context.Context, item *TradeItem) error

	// GetTradeItem retrieves a trade item by GTIN-14
	GetTradeItem(ctx context.Context, gtin14 string) (*TradeItem, error)

	// PutCompany creates or replaces a company
	PutCompany(ctx context.Context, company *Company) error

	// TradeItemByGTIN implements gs1.MasterData
	TradeItemByGTIN(ctx context.Context, gtin14 string) (*gs1.TradeItem, error)

	// CompaniesByPrefix implements gs1.MasterData
	CompaniesByPrefix(ctx context.Context, prefix string) ([]gs1.Company, error)
}

// EntryStore manages persisted identifiers
type EntryStore interface {
	// PutEntry creates or replaces the entry of an identifier
	PutEntry(ctx context.Context, entry *Entry) error

	// EntriesByEPCs returns the entries of the given identifiers in input
	// order, leaving out unknown identifiers
	EntriesByEPCs(ctx context.Context, epcs []string) ([]epcis.Entry, error)

	// Children returns the entries packed directly inside entry
	Children(ctx context.Context, entry epcis.Entry) ([]epcis.Entry, error)
}

// Domain models

// TradeItem is the master data record of a GTIN-14
type TradeItem struct {
	GTIN14        string    `bson:"_id" json:"gtin14" yaml:"gtin14"`
	CompanyPrefix string    `bson:"company_prefix" json:"companyPrefix" yaml:"company_prefix"`
	NDC           string    `bson:"ndc,omitempty" json:"ndc,omitempty" yaml:"ndc"`
	Name          string    `bson:"name" json:"name" yaml:"name"`
	UnitOfMeasure string    `bson:"unit_of_measure,omitempty" json:"unitOfMeasure,omitempty" yaml:"unit_of_measure"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt" yaml:"-"`
}

// GS1 converts the record for the identifier codec
func (t *TradeItem) GS1() *gs1.TradeItem {
	return &gs1.TradeItem{
		GTIN14:        t.GTIN14,
		CompanyPrefix: t.CompanyPrefix,
		NDC:           t.NDC,
		Name:          t.Name,
		UnitOfMeasure: t.UnitOfMeasure,
	}
}

// Company is a GS1 member company
type Company struct {
	ID            string    `bson:"_id" json:"id" yaml:"id"`
	Name          string    `bson:"name" json:"name" yaml:"name"`
	CompanyPrefix string    `bson:"company_prefix" json:"companyPrefix" yaml:"company_prefix"`
	SGLN          string    `bson:"sgln,omitempty" json:"sgln,omitempty" yaml:"sgln"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt" yaml:"-"`
}

// GS1 converts the record for the identifier codec
func (c *Company) GS1() gs1.Company {
	return gs1.Company{
		ID:            c.ID,
		Name:          c.Name,
		CompanyPrefix: c.CompanyPrefix,
		SGLN:          c.SGLN,
	}
}

// Entry is the persisted state of one identifier. Identifier is the key.
type Entry struct {
	Identifier     string       `bson:"_id" json:"identifier"`
	ParentID       string       `bson:"parent_id,omitempty" json:"parentId,omitempty"`
	LastEventID    string       `bson:"last_event_id,omitempty" json:"lastEventId,omitempty"`
	LastAction     epcis.Action `bson:"last_action,omitempty" json:"lastAction,omitempty"`
	LastEventTime  time.Time    `bson:"last_event_time" json:"lastEventTime"`
	Decommissioned bool         `bson:"decommissioned" json:"decommissioned"`
	UpdatedAt      time.Time    `bson:"updated_at" json:"updatedAt"`
}

// EPCIS converts the record to the event model
func (e *Entry) EPCIS() epcis.Entry {
	return epcis.Entry{
		ID:             e.Identifier,
		Identifier:     e.Identifier,
		ParentID:       e.ParentID,
		LastEventID:    e.LastEventID,
		LastAction:     e.LastAction,
		LastEventTime:  e.LastEventTime,
		Decommissioned: e.Decommissioned,
	}
}
