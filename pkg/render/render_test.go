package render

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
	"github.com/rmagee/quartet-integrations-sub000/pkg/parser"
)

var eventTime = time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)

func sampleEvents() (*epcis.ObjectEvent, *epcis.AggregationEvent, *epcis.TransactionEvent) {
	obj := &epcis.ObjectEvent{
		Event: epcis.Event{
			Action:      epcis.ActionAdd,
			BizStep:     epcis.BizStepCommissioning,
			Disposition: epcis.DispositionActive,
			ReadPoint:   "urn:epc:id:sgln:0312345.00000.0",
			EventTime:   eventTime,
			ILMD: []epcis.Attribute{
				{Name: epcis.ILMDLotNumber, Value: "LOT<1>"},
				{Name: "cbvmda:itemExpirationDate", Value: "2026-12-31"},
			},
		},
		EPCs: []string{"urn:epc:id:sgtin:0312345.000001.1", "urn:epc:id:sgtin:0312345.000001.2"},
	}
	agg := &epcis.AggregationEvent{
		Event: epcis.Event{
			Action:    epcis.ActionAdd,
			BizStep:   epcis.BizStepPacking,
			EventTime: eventTime.Add(10 * time.Second),
		},
		ParentID:  "urn:epc:id:sscc:0312345.0000000042",
		ChildEPCs: obj.EPCs,
	}
	tx := &epcis.TransactionEvent{
		Event: epcis.Event{
			Action:          epcis.ActionAdd,
			EventTime:       eventTime.Add(time.Minute),
			BizTransactions: []epcis.BizTransaction{{Type: epcis.BizTransactionPO, Value: "PO-1"}},
			Destinations:    []epcis.SourceDest{{Type: epcis.SourceDestOwningParty, ID: "urn:epc:id:sgln:0614141.00000.0"}},
		},
		ParentID: agg.ParentID,
	}
	return obj, agg, tx
}

func newRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	r, err := NewTemplateRenderer()
	require.NoError(t, err)
	return r
}

func TestBuiltinsRegistered(t *testing.T) {
	r := newRenderer(t)
	for _, name := range []string{
		ObjectEventXML, AggregationEventXML, TransactionEventXML,
		DocumentXML, DocumentJSON, EventJSON, OptelCommissioning,
	} {
		assert.True(t, r.Has(name), name)
	}
}

func TestRender_ObjectEvent(t *testing.T) {
	r := newRenderer(t)
	obj, _, _ := sampleEvents()

	out, err := r.Render(ObjectEventXML, obj, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "<epc>urn:epc:id:sgtin:0312345.000001.1</epc>")
	assert.Contains(t, out, "<eventTime>2024-03-01T10:15:30.000Z</eventTime>")
	assert.Contains(t, out, "<eventTimeZoneOffset>+00:00</eventTimeZoneOffset>")
	assert.Contains(t, out, "<cbvmda:lotNumber>LOT&lt;1&gt;</cbvmda:lotNumber>")
	assert.Contains(t, out, "<cbvmda:itemExpirationDate>2026-12-31</cbvmda:itemExpirationDate>")
	assert.NotContains(t, out, "<recordTime>")
	assert.NotContains(t, out, "<bizLocation>")
}

func TestRender_UnknownTemplate(t *testing.T) {
	obj, _, _ := sampleEvents()
	_, err := newRenderer(t).Render("vendor/missing.xml", obj, nil)
	assert.True(t, errors.Is(err, ErrUnknownTemplate))
}

func TestDocument_XMLParsesBack(t *testing.T) {
	r := newRenderer(t)
	obj, agg, tx := sampleEvents()
	c := &Context{DocumentID: "DOC-1", CreatedAt: eventTime}

	out, err := Document(r, DocumentXML, Bind(obj, agg, tx), c)
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(out))
	id := doc.FindElement("//*[local-name()='InstanceIdentifier']")
	require.NotNil(t, id)
	assert.Equal(t, "DOC-1", id.Text())

	collected := &parser.Collector{}
	msgID, err := parser.New(collected, nil, nil).Parse(context.Background(), strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "DOC-1", msgID)
	require.Len(t, collected.Objects, 1)
	require.Len(t, collected.Aggregations, 1)
	require.Len(t, collected.Transactions, 1)

	assert.Equal(t, obj.EPCs, collected.Objects[0].EPCs)
	lot, _ := collected.Objects[0].ILMDValue(epcis.ILMDLotNumber)
	assert.Equal(t, "LOT<1>", lot)
	assert.Equal(t, agg.ParentID, collected.Aggregations[0].ParentID)
	assert.Equal(t, agg.ChildEPCs, collected.Aggregations[0].ChildEPCs)
	assert.True(t, collected.Aggregations[0].EventTime.Equal(agg.EventTime))
	assert.Equal(t, "PO-1", collected.Transactions[0].BizTransactionValue("po"))
	assert.Equal(t, tx.Destinations, collected.Transactions[0].Destinations)
}

func TestDocument_JSON(t *testing.T) {
	r := newRenderer(t)
	obj, agg, _ := sampleEvents()

	out, err := Document(r, DocumentJSON, Bind(obj, agg), &Context{DocumentID: "DOC-2", CreatedAt: eventTime})
	require.NoError(t, err)

	var doc struct {
		ID        string `json:"id"`
		EPCISBody struct {
			EventList []map[string]any `json:"eventList"`
		} `json:"epcisBody"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	assert.Equal(t, "DOC-2", doc.ID)
	require.Len(t, doc.EPCISBody.EventList, 2)

	first := doc.EPCISBody.EventList[0]
	assert.Equal(t, "ObjectEvent", first["type"])
	assert.Len(t, first["epcList"], 2)
	assert.Equal(t, map[string]any{
		"cbvmda:lotNumber":          "LOT<1>",
		"cbvmda:itemExpirationDate": "2026-12-31",
	}, first["ilmd"])

	second := doc.EPCISBody.EventList[1]
	assert.Equal(t, "AggregationEvent", second["type"])
	assert.Equal(t, agg.ParentID, second["parentID"])
	assert.Len(t, second["childEPCs"], 2)
}

func TestDocument_TemplateSelection(t *testing.T) {
	r := newRenderer(t)
	require.NoError(t, r.AddTemplate("vendor/envelope.txt", `{{.Context.Body}}`))
	require.NoError(t, r.AddTemplate("vendor/event.txt", `event {{.Event.Kind}} lot={{.Context.Lot}}`))
	require.NoError(t, r.AddTemplate("vendor/bound.txt", `bound {{len .Event.Identifiers}}`))

	obj, agg, tx := sampleEvents()
	obj.Template = "vendor/event.txt"

	out, err := Document(r, "vendor/envelope.txt", []Bound{
		{Event: obj},
		{Event: agg, Template: "vendor/bound.txt"},
		{Event: tx, Template: "vendor/event.txt", Context: &Context{Lot: "OWN"}},
	}, &Context{Lot: "DOC"})
	require.NoError(t, err)
	assert.Equal(t, "event ObjectEvent lot=DOC\nbound 3\nevent TransactionEvent lot=OWN", out)
}

func TestContext_ForEvent(t *testing.T) {
	obj, agg, _ := sampleEvents()
	doc := &Context{
		DocumentID: "DOC-1",
		Count:      7,
		Lot:        "LOT-1",
		Location:   "urn:epc:id:sgln:0312345.99999.0",
		Values:     map[string]string{"gln": "0312345000004"},
	}

	c := doc.ForEvent(obj)
	assert.Equal(t, "DOC-1", c.DocumentID)
	assert.Equal(t, "LOT-1", c.Lot)
	assert.Equal(t, 2, c.Count)
	assert.Equal(t, "urn:epc:id:sgln:0312345.00000.0", c.Location)
	assert.Equal(t, "LOT<1>", c.Value("lotNumber"))
	assert.Equal(t, "2026-12-31", c.Value("itemExpirationDate"))
	assert.Equal(t, "0312345000004", c.Value("gln"))

	c = doc.ForEvent(agg)
	assert.Equal(t, 2, c.Count, "parent is not counted")
	assert.Equal(t, "urn:epc:id:sgln:0312345.99999.0", c.Location)
	assert.Empty(t, c.Value("lotNumber"))

	assert.Equal(t, 7, doc.Count)
	assert.Len(t, doc.Values, 1)
	assert.Equal(t, 2, (*Context)(nil).ForEvent(obj).Count)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", ContentType(DocumentJSON))
	assert.Equal(t, "application/xml", ContentType(DocumentXML))
	assert.Equal(t, "application/xml", ContentType(OptelCommissioning))
}

func TestOverride(t *testing.T) {
	obj, agg, tx := sampleEvents()
	events := []epcis.Eventer{obj, agg, tx}

	assert.Equal(t, 1, Override(events, OptelCommissioning, epcis.KindObject))
	assert.Equal(t, OptelCommissioning, obj.Template)
	assert.Empty(t, agg.Template)

	assert.Equal(t, 3, Override(events, "vendor/all.xml"))
	assert.Equal(t, "vendor/all.xml", tx.Template)
}

func TestOptelCommissioningUsesContext(t *testing.T) {
	r := newRenderer(t)
	obj, _, _ := sampleEvents()

	out, err := r.Render(OptelCommissioning, obj, &Context{Lot: "L9", Expiry: "2027-01-31", Location: "urn:epc:id:sgln:0312345.11111.0"})
	require.NoError(t, err)
	assert.Contains(t, out, "<cbvmda:lotNumber>L9</cbvmda:lotNumber>")
	assert.Contains(t, out, "<cbvmda:itemExpirationDate>2027-01-31</cbvmda:itemExpirationDate>")
	assert.Contains(t, out, "<bizLocation><id>urn:epc:id:sgln:0312345.11111.0</id></bizLocation>")
	assert.Contains(t, out, "<recordTime>2024-03-01T10:15:30.000Z</recordTime>")
	assert.NotContains(t, out, "measurementUnitCode")
}

func TestLoadFS(t *testing.T) {
	r := newRenderer(t)
	fsys := fstest.MapFS{
		"tracelink/object.xml": {Data: []byte(`<obj count="{{.Context.Count}}">{{.Context.Value "gln"}}</obj>`)},
	}
	require.NoError(t, r.LoadFS(fsys))

	obj, _, _ := sampleEvents()
	out, err := r.Render("tracelink/object.xml", obj, &Context{Count: 2, Values: map[string]string{"gln": "0312345000004"}})
	require.NoError(t, err)
	assert.Equal(t, `<obj count="2">0312345000004</obj>`, out)
}

func TestAddTemplate_ParseError(t *testing.T) {
	err := newRenderer(t).AddTemplate("broken", "{{.Event")
	assert.Error(t, err)
}
