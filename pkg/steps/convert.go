package steps

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
	"github.com/rmagee/quartet-integrations-sub000/pkg/gs1"
	"github.com/rmagee/quartet-integrations-sub000/pkg/rules"
)

// ParamBarcodeInput treats identifiers that are not URNs as GS1 element
// strings
const ParamBarcodeInput = "Barcode Input"

// ConvertEPCsStep rewrites vendor identifiers of every event in the rule
// context into compliant GS1 URNs. The urn:epc:id:sgtin:{gtin14}.{serial}
// shorthand is split using the company prefix from master data.
type ConvertEPCsStep struct {
	base
	masterData gs1.MasterData
}

// NewConvertEPCsStep creates the step
func NewConvertEPCsStep(params rules.Parameters, deps Deps) *ConvertEPCsStep {
	return &ConvertEPCsStep{base: newBase(NameConvertEPCs, params, deps), masterData: deps.MasterData}
}

// Execute implements rules.Step
func (s *ConvertEPCsStep) Execute(ctx context.Context, rc *rules.Context) (err error) {
	started := time.Now()
	defer func() { s.finish(started, err) }()

	barcodes, err := s.params.BoolOr(ParamBarcodeInput, false)
	if err != nil {
		return err
	}
	c := &converter{codec: gs1.NewCodec(s.masterData, s.logger), barcodes: barcodes}

	for _, ev := range contextEvents(rc) {
		if err := c.event(ctx, ev); err != nil {
			return err
		}
	}

	s.logger.Debug("converted vendor identifiers", slog.Int("converted", c.converted))
	return nil
}

// converter holds one codec so lookups are cached across all events
type converter struct {
	codec     *gs1.Codec
	barcodes  bool
	converted int
}

func (c *converter) event(ctx context.Context, ev epcis.Eventer) error {
	switch e := ev.(type) {
	case *epcis.ObjectEvent:
		return c.list(ctx, e.EPCs)
	case *epcis.AggregationEvent:
		if err := c.one(ctx, &e.ParentID); err != nil {
			return err
		}
		return c.list(ctx, e.ChildEPCs)
	case *epcis.TransactionEvent:
		if err := c.one(ctx, &e.ParentID); err != nil {
			return err
		}
		return c.list(ctx, e.EPCs)
	}
	return nil
}

func (c *converter) list(ctx context.Context, epcs []string) error {
	for i := range epcs {
		if err := c.one(ctx, &epcs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) one(ctx context.Context, epc *string) error {
	var (
		out string
		err error
	)
	switch {
	case *epc == "":
		return nil
	case gs1.NeedsConversion(*epc):
		out, err = c.codec.ConvertVendorGTINSerial(ctx, *epc)
	case c.barcodes && !strings.HasPrefix(*epc, "urn:"):
		out, err = c.codec.BarcodeToURN(ctx, *epc)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	*epc = out
	c.converted++
	return nil
}
