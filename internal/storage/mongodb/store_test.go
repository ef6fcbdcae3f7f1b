package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagee/quartet-integrations-sub000/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// newTestStore connects to the database named by MONGODB_TEST_URI and
// skips the test when it is not set
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := NewStore(ctx, &Config{URI: uri, Database: "epcis_test_" + uuid.New().String()[:8]})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		_ = s.db.Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestStore_MasterData(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.TradeItemByGTIN(ctx, "10312345000018")
	require.NoError(t, err)
	assert.Nil(t, item)

	require.NoError(t, s.PutTradeItem(ctx, &storage.TradeItem{GTIN14: "10312345000018", CompanyPrefix: "0312345", Name: "Tablets"}))
	item, err = s.TradeItemByGTIN(ctx, "10312345000018")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "0312345", item.CompanyPrefix)

	require.NoError(t, s.PutCompany(ctx, &storage.Company{Name: "Acme", CompanyPrefix: "0312345"}))
	companies, err := s.CompaniesByPrefix(ctx, "0312345")
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "Acme", companies[0].Name)
}

func TestStore_Entries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	pallet := "urn:epc:id:sscc:0312345.0000000042"
	carton := "urn:epc:id:sgtin:0312345.500001.2001"

	require.NoError(t, s.PutEntry(ctx, &storage.Entry{Identifier: pallet}))
	require.NoError(t, s.PutEntry(ctx, &storage.Entry{Identifier: carton, ParentID: pallet}))

	entries, err := s.EntriesByEPCs(ctx, []string{carton, "unknown", pallet})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, carton, entries[0].Identifier)
	assert.Equal(t, pallet, entries[1].Identifier)

	children, err := s.Children(ctx, entries[1])
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, carton, children[0].Identifier)
}
