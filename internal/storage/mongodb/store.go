// Package mongodb implements storage interfaces using MongoDB
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rmagee/quartet-integrations-sub000/internal/storage"
	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
	"github.com/rmagee/quartet-integrations-sub000/pkg/gs1"
)

// Store implements storage.Store using MongoDB
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	// Collections
	tradeItems *mongo.Collection
	companies  *mongo.Collection
	entries    *mongo.Collection
}

// Config holds MongoDB connection settings
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// NewStore creates a new MongoDB store
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		opts.SetTimeout(cfg.Timeout)
	}

	// Connect to MongoDB
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}

	// Verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:     client,
		db:         db,
		tradeItems: db.Collection("trade_items"),
		companies:  db.Collection("companies"),
		entries:    db.Collection("entries"),
	}

	// Create indexes
	if err := s.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("creating indexes: %w", err)
	}

	return s, nil
}

func (s *Store) createIndexes(ctx context.Context) error {
	// Company indexes
	_, err := s.companies.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "company_prefix", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating company indexes: %w", err)
	}

	// Trade item indexes
	_, err = s.tradeItems.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "company_prefix", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("creating trade item indexes: %w", err)
	}

	// Entry indexes
	_, err = s.entries.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "parent_id", Value: 1}}},
		{Keys: bson.D{{Key: "last_event_time", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("creating entry indexes: %w", err)
	}

	return nil
}

// Close closes the MongoDB connection
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ping verifies database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// MasterDataStore implementation

func (s *Store) PutTradeItem(ctx context.Context, item *storage.TradeItem) error {
	if item.GTIN14 == "" {
		return fmt.Errorf("trade item has no GTIN")
	}
	item.UpdatedAt = time.Now()
	_, err := s.tradeItems.ReplaceOne(ctx, bson.M{"_id": item.GTIN14}, item, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) GetTradeItem(ctx context.Context, gtin14 string) (*storage.TradeItem, error) {
	var item storage.TradeItem
	err := s.tradeItems.FindOne(ctx, bson.M{"_id": gtin14}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &item, err
}

func (s *Store) PutCompany(ctx context.Context, company *storage.Company) error {
	if company.ID == "" {
		company.ID = company.CompanyPrefix
	}
	if company.ID == "" {
		return fmt.Errorf("company has neither ID nor company prefix")
	}
	company.UpdatedAt = time.Now()
	_, err := s.companies.ReplaceOne(ctx, bson.M{"_id": company.ID}, company, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) TradeItemByGTIN(ctx context.Context, gtin14 string) (*gs1.TradeItem, error) {
	item, err := s.GetTradeItem(ctx, gtin14)
	if item == nil || err != nil {
		return nil, err
	}
	return item.GS1(), nil
}

func (s *Store) CompaniesByPrefix(ctx context.Context, prefix string) ([]gs1.Company, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.companies.Find(ctx, bson.M{"company_prefix": prefix}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var companies []*storage.Company
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, err
	}
	out := make([]gs1.Company, 0, len(companies))
	for _, c := range companies {
		out = append(out, c.GS1())
	}
	return out, nil
}

// EntryStore implementation

func (s *Store) PutEntry(ctx context.Context, entry *storage.Entry) error {
	if entry.Identifier == "" {
		return fmt.Errorf("entry has no identifier")
	}
	entry.UpdatedAt = time.Now()
	_, err := s.entries.ReplaceOne(ctx, bson.M{"_id": entry.Identifier}, entry, options.Replace().SetUpsert(true))
	return err
}

func (s *Store) EntriesByEPCs(ctx context.Context, epcs []string) ([]epcis.Entry, error) {
	if len(epcs) == 0 {
		return nil, nil
	}
	cursor, err := s.entries.Find(ctx, bson.M{"_id": bson.M{"$in": epcs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*storage.Entry
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	byID := make(map[string]*storage.Entry, len(docs))
	for _, d := range docs {
		byID[d.Identifier] = d
	}

	// keep input order
	out := make([]epcis.Entry, 0, len(docs))
	for _, epc := range epcs {
		if d, ok := byID[epc]; ok {
			out = append(out, d.EPCIS())
			delete(byID, epc)
		}
	}
	return out, nil
}

func (s *Store) Children(ctx context.Context, entry epcis.Entry) ([]epcis.Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.entries.Find(ctx, bson.M{"parent_id": entry.Identifier}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*storage.Entry
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]epcis.Entry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.EPCIS())
	}
	return out, nil
}
