package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
	"github.com/rmagee/quartet-integrations-sub000/pkg/gs1"
)

var (
	_ Store          = (*Memory)(nil)
	_ gs1.MasterData = (*Memory)(nil)
)

func TestMemory_TradeItems(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	item, err := m.TradeItemByGTIN(ctx, "10312345000018")
	require.NoError(t, err)
	assert.Nil(t, item)

	require.NoError(t, m.PutTradeItem(ctx, &TradeItem{GTIN14: "10312345000018", CompanyPrefix: "0312345", Name: "Tablets"}))
	item, err = m.TradeItemByGTIN(ctx, "10312345000018")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "0312345", item.CompanyPrefix)
	assert.Equal(t, "Tablets", item.Name)

	rec, err := m.GetTradeItem(ctx, "10312345000018")
	require.NoError(t, err)
	assert.False(t, rec.UpdatedAt.IsZero())

	assert.Error(t, m.PutTradeItem(ctx, &TradeItem{}))
}

func TestMemory_Companies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.PutCompany(ctx, &Company{Name: "Acme", CompanyPrefix: "0312345"}))
	require.NoError(t, m.PutCompany(ctx, &Company{ID: "b", Name: "Other", CompanyPrefix: "031234"}))

	companies, err := m.CompaniesByPrefix(ctx, "0312345")
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "0312345", companies[0].ID)
	assert.Equal(t, "Acme", companies[0].Name)

	companies, err = m.CompaniesByPrefix(ctx, "99")
	require.NoError(t, err)
	assert.Empty(t, companies)

	assert.Error(t, m.PutCompany(ctx, &Company{Name: "nameless"}))
}

func TestMemory_CodecResolution(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.PutTradeItem(ctx, &TradeItem{GTIN14: "10312345000018", CompanyPrefix: "0312345"}))
	require.NoError(t, m.PutCompany(ctx, &Company{Name: "Acme", CompanyPrefix: "0312345"}))

	codec := gs1.NewCodec(m, nil)
	urn, err := codec.ConvertVendorGTINSerial(ctx, "urn:epc:id:sgtin:10312345000018.1001")
	require.NoError(t, err)
	assert.Equal(t, "urn:epc:id:sgtin:0312345.100001.1001", urn)

	n, err := codec.ResolveCompanyPrefixLength(ctx, "003123450000000424")
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestMemory_Entries(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	pallet := "urn:epc:id:sscc:0312345.0000000042"
	require.NoError(t, m.PutEntry(ctx, &Entry{Identifier: pallet, LastAction: epcis.ActionAdd}))
	require.NoError(t, m.PutEntry(ctx, &Entry{Identifier: "urn:epc:id:sgtin:0312345.500001.2002", ParentID: pallet}))
	require.NoError(t, m.PutEntry(ctx, &Entry{Identifier: "urn:epc:id:sgtin:0312345.500001.2001", ParentID: pallet}))
	assert.Error(t, m.PutEntry(ctx, &Entry{}))

	entries, err := m.EntriesByEPCs(ctx, []string{"urn:epc:id:sgtin:0312345.500001.2001", "unknown", pallet})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "urn:epc:id:sgtin:0312345.500001.2001", entries[0].Identifier)
	assert.Equal(t, pallet, entries[1].Identifier)
	assert.True(t, entries[1].IsTopLevel())
	assert.Equal(t, epcis.ActionAdd, entries[1].LastAction)

	children, err := m.Children(ctx, entries[1])
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "urn:epc:id:sgtin:0312345.500001.2001", children[0].Identifier)
	assert.Equal(t, "urn:epc:id:sgtin:0312345.500001.2002", children[1].Identifier)
}
