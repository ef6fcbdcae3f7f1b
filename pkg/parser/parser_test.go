package parser

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagee/quartet-integrations-sub000/pkg/compression"
	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return data
}

func TestParse_Document(t *testing.T) {
	c := &Collector{}
	p := New(c, Chain(SAPExtension{}, USHealthcare{}), nil)

	id, err := p.Parse(context.Background(), bytes.NewReader(readFixture(t, "document.xml")))
	require.NoError(t, err)
	assert.Equal(t, "MSG-0001", id)

	require.Len(t, c.Objects, 1)
	require.Len(t, c.Aggregations, 1)
	require.Len(t, c.Transactions, 1)
	require.Len(t, c.Events, 3)
	assert.Equal(t, epcis.KindObject, c.Events[0].Kind())
	assert.Equal(t, epcis.KindTransaction, c.Events[2].Kind())

	obj := c.Objects[0]
	assert.Equal(t, epcis.ActionAdd, obj.Action)
	assert.Equal(t, []string{
		"urn:epc:id:sgtin:0312345.000001.1001",
		"urn:epc:id:sgtin:0312345.000001.1002",
	}, obj.EPCs)
	assert.Equal(t, epcis.BizStepCommissioning, obj.BizStep)
	assert.Equal(t, epcis.DispositionActive, obj.Disposition)
	assert.Equal(t, "urn:epc:id:sgln:0312345.00000.0", obj.ReadPoint)
	assert.Equal(t, "urn:epc:id:sgln:0312345.00000.0", obj.BizLocation)
	assert.Equal(t, "+00:00", obj.EventTimeZoneOffset)
	assert.True(t, obj.EventTime.Equal(time.Date(2024, 3, 1, 10, 15, 30, 123_000_000, time.UTC)))
	assert.True(t, obj.RecordTime.Equal(time.Date(2024, 3, 1, 10, 15, 31, 0, time.UTC)))

	lot, _ := obj.ILMDValue(epcis.ILMDLotNumber)
	assert.Equal(t, "LOT-7", lot)
	exp, _ := obj.ILMDValue(epcis.ILMDExpirationDate)
	assert.Equal(t, "2026-12-31", exp)

	mat, ok := obj.ExtensionValue("MATNR")
	assert.True(t, ok)
	assert.Equal(t, "MAT-100", mat)
	affirm, ok := obj.ExtensionValue("gs1ushc:affirmTransactionStatement")
	assert.True(t, ok)
	assert.Equal(t, "true", affirm)

	agg := c.Aggregations[0]
	assert.Equal(t, "urn:epc:id:sscc:0312345.0000000042", agg.ParentID)
	assert.Len(t, agg.ChildEPCs, 2)
	assert.True(t, agg.RecordTime.IsZero())

	tx := c.Transactions[0]
	assert.Equal(t, "urn:epc:id:sscc:0312345.0000000042", tx.ParentID)
	assert.Empty(t, tx.EPCs)
	assert.Equal(t, "urn:epcglobal:cbv:bt:0312345000004:PO-77", tx.BizTransactionValue("po"))
	require.Len(t, tx.Sources, 1)
	assert.Equal(t, epcis.SourceDestOwningParty, tx.Sources[0].Type)
	require.Len(t, tx.Destinations, 1)
	assert.Equal(t, "urn:epc:id:sgln:0614141.00000.0", tx.Destinations[0].ID)
}

func TestParse_SOAPWrappedWithoutHeader(t *testing.T) {
	c := &Collector{}
	p := New(c, Capture, nil)

	id, err := p.Parse(context.Background(), bytes.NewReader(readFixture(t, "soap.xml")))
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "generated message id should be a UUID")

	require.Len(t, c.Objects, 1)
	assert.Equal(t, epcis.ActionObserve, c.Objects[0].Action)
	assert.Equal(t, []string{"urn:epc:id:sgtin:10312345000018.1"}, c.Objects[0].EPCs)
	line, ok := c.Objects[0].ExtensionValue("lineNumber")
	assert.True(t, ok)
	assert.Equal(t, "4", line)
}

func TestParse_Gzip(t *testing.T) {
	compressed, err := compression.NewCompressor().Compress(readFixture(t, "document.xml"))
	require.NoError(t, err)

	c := &Collector{}
	id, err := New(c, nil, nil).Parse(context.Background(), bytes.NewReader(compressed))
	require.NoError(t, err)
	assert.Equal(t, "MSG-0001", id)
	assert.Len(t, c.Events, 3)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unclosed element", `<EPCISDocument><EventList><ObjectEvent><action>ADD</action></EventList>`, ErrMalformedXML},
		{"truncated event", `<EventList><ObjectEvent><action>ADD</action>`, ErrMalformedXML},
		{"empty input", ``, ErrMalformedXML},
		{"unknown action", `<ObjectEvent><action>MOVE</action></ObjectEvent>`, ErrInvalidEvent},
		{"bad timestamp", `<ObjectEvent><eventTime>noon</eventTime></ObjectEvent>`, ErrInvalidEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&Collector{}, nil, nil).Parse(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

type failingHandler struct {
	Collector
	err   error
	calls int
}

func (h *failingHandler) OnObjectEvent(ctx context.Context, ev *epcis.ObjectEvent) error {
	h.calls++
	return h.err
}

func TestParse_HandlerErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	h := &failingHandler{err: boom}
	doc := `<EventList>
		<ObjectEvent><action>ADD</action></ObjectEvent>
		<ObjectEvent><action>ADD</action></ObjectEvent>
		<AggregationEvent><action>ADD</action></AggregationEvent>
	</EventList>`

	_, err := New(h, nil, nil).Parse(context.Background(), strings.NewReader(doc))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, h.calls)
	assert.Empty(t, h.Aggregations)
}

func TestParse_ExtensionErrorAborts(t *testing.T) {
	boom := errors.New("unsupported extension")
	ext := ExtensionFunc(func(ev epcis.Eventer, el *etree.Element) error {
		if el.Tag == "vendorBlock" {
			return boom
		}
		return nil
	})
	doc := `<ObjectEvent><action>ADD</action><vendorBlock>x</vendorBlock></ObjectEvent>`

	_, err := New(&Collector{}, ext, nil).Parse(context.Background(), strings.NewReader(doc))
	assert.ErrorIs(t, err, boom)
}

func TestParse_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(&Collector{}, nil, nil).Parse(ctx, bytes.NewReader(readFixture(t, "document.xml")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParse_NoHandler(t *testing.T) {
	_, err := (&Parser{}).Parse(context.Background(), strings.NewReader("<a/>"))
	assert.Error(t, err)
}

func TestUSHealthcare_IgnoresOtherNamespaces(t *testing.T) {
	c := &Collector{}
	doc := `<ObjectEvent xmlns:x="urn:other"><action>ADD</action><x:note>hi</x:note></ObjectEvent>`

	_, err := New(c, USHealthcare{}, nil).Parse(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, c.Objects, 1)
	assert.Empty(t, c.Objects[0].Extensions)
}
