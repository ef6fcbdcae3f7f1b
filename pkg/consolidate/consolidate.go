package consolidate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
	"github.com/rmagee/quartet-integrations-sub000/pkg/gs1"
	"github.com/rmagee/quartet-integrations-sub000/pkg/parser"
)

// ErrUnmappedIndicator is returned for an SGTIN whose indicator digit has
// no pack level in the dialect
var ErrUnmappedIndicator = errors.New("indicator digit is not mapped to a pack level")

// Shipment is the metadata taken from the first event carrying each value.
// Values no event carried are empty.
type Shipment struct {
	Lot           string
	Expiry        string
	Product       string
	UOM           string
	PurchaseOrder string
}

// pallet is a working set entry for an SSCC
type pallet struct {
	sscc string
	aggs []*epcis.AggregationEvent
}

// Parser collapses per-unit vendor commissioning events into one event per
// pack level and keeps the pallet hierarchy consistent with later
// disaggregations. State lives for one Parse call; the accessors read the
// result of the last call. A Parser is not safe for concurrent use.
type Parser struct {
	cfg    Config
	logger *slog.Logger

	messageID    string
	levels       map[PackLevel]*epcis.ObjectEvent
	consolidated map[*epcis.ObjectEvent]PackLevel
	objects      []*epcis.ObjectEvent
	aggregations []*epcis.AggregationEvent
	transactions []*epcis.TransactionEvent
	pallets      map[string]*pallet
	palletOrder  []string
	seen         map[string]struct{}
	latest       time.Time
	shipment     Shipment
}

// New creates a parser for the given dialect
func New(cfg Config) *Parser {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Skew < 0 {
		cfg.Skew = 0
	}
	if cfg.ILMDNames == (ILMDNames{}) {
		cfg.ILMDNames = DefaultILMDNames
	}
	p := &Parser{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "consolidate")),
	}
	p.reset()
	return p
}

func (p *Parser) reset() {
	p.messageID = ""
	p.levels = make(map[PackLevel]*epcis.ObjectEvent)
	p.consolidated = make(map[*epcis.ObjectEvent]PackLevel)
	p.objects = nil
	p.aggregations = nil
	p.transactions = nil
	p.pallets = make(map[string]*pallet)
	p.palletOrder = nil
	p.seen = make(map[string]struct{})
	p.latest = time.Time{}
	p.shipment = Shipment{}
}

// Parse consolidates the vendor document read from r and returns its
// message identifier. Any previous result is discarded.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (string, error) {
	p.reset()
	id, err := parser.New(p, p.cfg.Extensions, p.logger).Parse(ctx, r)
	if err != nil {
		return "", err
	}
	p.messageID = id

	p.logger.Info("consolidated vendor events",
		slog.String("message_id", id),
		slog.Int("object_events", len(p.ObjectEvents())),
		slog.Int("aggregation_events", len(p.aggregations)),
		slog.Int("transaction_events", len(p.transactions)),
		slog.Int("pallets", len(p.palletOrder)),
		slog.Int("quantity", p.Quantity()))
	return id, nil
}

// OnObjectEvent implements parser.Handler
func (p *Parser) OnObjectEvent(_ context.Context, ev *epcis.ObjectEvent) error {
	p.observe(&ev.Event)
	p.advance(ev.EventTime)
	p.advance(ev.RecordTime)

	if ev.Action != epcis.ActionAdd {
		ev.Template = p.cfg.DefaultTemplate
		p.objects = append(p.objects, ev)
		return nil
	}
	for _, epc := range ev.EPCs {
		level, err := p.packLevel(epc)
		if err != nil {
			return err
		}
		if _, dup := p.seen[epc]; dup {
			continue
		}
		p.seen[epc] = struct{}{}

		target := p.commissioning(level, &ev.Event)
		target.EPCs = append(target.EPCs, epc)
		if level == Pallet {
			p.track(epc)
		}
	}
	return nil
}

// OnAggregationEvent implements parser.Handler
func (p *Parser) OnAggregationEvent(_ context.Context, ev *epcis.AggregationEvent) error {
	p.observe(&ev.Event)
	p.shift(&ev.Event)

	if !gs1.IsSSCC(ev.ParentID) {
		p.aggregations = append(p.aggregations, ev)
		return nil
	}
	switch ev.Action {
	case epcis.ActionAdd:
		pal := p.track(ev.ParentID)
		pal.aggs = append(pal.aggs, ev)
		p.aggregations = append(p.aggregations, ev)
	case epcis.ActionDelete:
		pal, ok := p.pallets[ev.ParentID]
		if !ok || len(pal.aggs) == 0 {
			p.aggregations = append(p.aggregations, ev)
			return nil
		}
		p.disaggregate(pal, ev)
	default:
		p.aggregations = append(p.aggregations, ev)
	}
	return nil
}

// OnTransactionEvent implements parser.Handler
func (p *Parser) OnTransactionEvent(_ context.Context, ev *epcis.TransactionEvent) error {
	p.observe(&ev.Event)
	p.transactions = append(p.transactions, ev)
	return nil
}

// commissioning returns the consolidated event of a pack level, creating it
// from seed on first use
func (p *Parser) commissioning(level PackLevel, seed *epcis.Event) *epcis.ObjectEvent {
	if ev, ok := p.levels[level]; ok {
		return ev
	}
	ev := &epcis.ObjectEvent{Event: p.seed(level, seed)}
	p.levels[level] = ev
	p.consolidated[ev] = level
	p.objects = append(p.objects, ev)

	p.logger.Debug("started commissioning event",
		slog.String("pack_level", string(level)),
		slog.String("template", ev.Template))
	return ev
}

func (p *Parser) seed(level PackLevel, from *epcis.Event) epcis.Event {
	ev := epcis.Event{
		Action:              epcis.ActionAdd,
		BizStep:             from.BizStep,
		Disposition:         from.Disposition,
		ReadPoint:           from.ReadPoint,
		BizLocation:         from.BizLocation,
		EventTime:           from.EventTime,
		RecordTime:          from.RecordTime,
		EventTimeZoneOffset: from.EventTimeZoneOffset,
		ILMD:                append([]epcis.Attribute(nil), from.ILMD...),
		Template:            p.cfg.Templates[level],
	}
	if ev.BizStep == "" {
		ev.BizStep = epcis.BizStepCommissioning
	}
	if ev.Disposition == "" {
		ev.Disposition = epcis.DispositionActive
	}
	if ev.Template == "" {
		ev.Template = p.cfg.DefaultTemplate
	}
	return ev
}

// disaggregate applies a DELETE on a tracked pallet. Children that were
// packed on the pallet move to the partial carton commissioning event.
func (p *Parser) disaggregate(pal *pallet, ev *epcis.AggregationEvent) {
	for _, child := range ev.ChildEPCs {
		removed := false
		for _, agg := range pal.aggs {
			if agg.RemoveChild(child) {
				removed = true
			}
		}
		if !removed {
			p.logger.Debug("disaggregated child was not on pallet",
				slog.String("sscc", pal.sscc),
				slog.String("epc", child))
			continue
		}
		for obj, level := range p.consolidated {
			if level != PartialCarton {
				obj.RemoveEPC(child)
			}
		}
		partial := p.partialCarton(ev)
		if !contains(partial.EPCs, child) {
			partial.EPCs = append(partial.EPCs, child)
		}
		p.seen[child] = struct{}{}
	}

	kept := pal.aggs[:0]
	for _, agg := range pal.aggs {
		if len(agg.ChildEPCs) > 0 {
			kept = append(kept, agg)
			continue
		}
		p.aggregations = without(p.aggregations, agg)
	}
	pal.aggs = kept
	if len(pal.aggs) == 0 {
		p.untrack(pal.sscc)
		p.logger.Debug("pallet emptied by disaggregation", slog.String("sscc", pal.sscc))
	}
}

// partialCarton returns the partial carton commissioning event. It is
// timed after the first object event so it sorts with its siblings.
func (p *Parser) partialCarton(trigger *epcis.AggregationEvent) *epcis.ObjectEvent {
	if ev, ok := p.levels[PartialCarton]; ok {
		return ev
	}
	base := &trigger.Event
	if len(p.objects) > 0 {
		base = &p.objects[0].Event
	}
	seed := p.seed(PartialCarton, base)
	seed.BizStep = epcis.BizStepCommissioning
	seed.Disposition = epcis.DispositionActive
	if base != &trigger.Event {
		seed.EventTime = seed.EventTime.Add(p.cfg.Skew)
		if !seed.RecordTime.IsZero() {
			seed.RecordTime = seed.RecordTime.Add(p.cfg.Skew)
		}
	}
	ev := &epcis.ObjectEvent{Event: seed}
	p.advance(seed.EventTime)
	p.advance(seed.RecordTime)
	p.levels[PartialCarton] = ev
	p.consolidated[ev] = PartialCarton
	p.objects = append(p.objects, ev)
	return ev
}

// shift moves an aggregation event past both its vendor time and every
// object event seen so far
func (p *Parser) shift(c *epcis.Event) {
	c.EventTime = later(c.EventTime, p.latest).Add(p.cfg.Skew)
	if c.RecordTime.IsZero() {
		c.RecordTime = c.EventTime
		return
	}
	c.RecordTime = later(c.RecordTime, p.latest).Add(p.cfg.Skew)
}

func (p *Parser) advance(t time.Time) {
	p.latest = later(p.latest, t)
}

func (p *Parser) track(sscc string) *pallet {
	if pal, ok := p.pallets[sscc]; ok {
		return pal
	}
	pal := &pallet{sscc: sscc}
	p.pallets[sscc] = pal
	p.palletOrder = append(p.palletOrder, sscc)
	return pal
}

func (p *Parser) untrack(sscc string) {
	delete(p.pallets, sscc)
	for i, s := range p.palletOrder {
		if s == sscc {
			p.palletOrder = append(p.palletOrder[:i], p.palletOrder[i+1:]...)
			return
		}
	}
}

func (p *Parser) packLevel(epc string) (PackLevel, error) {
	switch {
	case gs1.IsSSCC(epc):
		return Pallet, nil
	case gs1.IsSGTIN(epc):
		ind, err := indicator(epc)
		if err != nil {
			return "", err
		}
		level, ok := p.cfg.PackLevels[ind]
		if !ok {
			return "", fmt.Errorf("%w: %q in %s", ErrUnmappedIndicator, ind, epc)
		}
		return level, nil
	}
	return "", &gs1.Error{Kind: gs1.KindInvalidEncoding, Identifier: epc, Reason: "commissioned identifiers must be SGTIN or SSCC URNs"}
}

// indicator reads the indicator digit of a compliant SGTIN or of the vendor
// gtin14.serial shorthand
func indicator(epc string) (byte, error) {
	if gs1.NeedsConversion(epc) {
		return epc[len(gs1.SGTINPrefix)], nil
	}
	return gs1.Indicator(epc)
}

// observe records shipment metadata the first time each value appears
func (p *Parser) observe(c *epcis.Event) {
	names := p.cfg.ILMDNames
	fill := func(dst *string, value string) {
		if *dst == "" {
			*dst = strings.TrimSpace(value)
		}
	}
	ilmd := func(name string) string {
		v, _ := c.ILMDValue(name)
		return v
	}

	fill(&p.shipment.Lot, ilmd(names.Lot))
	fill(&p.shipment.Expiry, ilmd(names.Expiry))
	fill(&p.shipment.UOM, ilmd(names.UOM))
	fill(&p.shipment.Product, ilmd(names.Product))
	for _, name := range p.cfg.ProductExtensions {
		v, _ := c.ExtensionValue(name)
		fill(&p.shipment.Product, v)
	}
	fill(&p.shipment.PurchaseOrder, purchaseOrder(c.BizTransactionValue("po")))
}

// purchaseOrder strips the CBV business transaction URN down to the order
// number
func purchaseOrder(bt string) string {
	if i := strings.LastIndexByte(bt, ':'); i >= 0 {
		return bt[i+1:]
	}
	return bt
}

func later(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func without(list []*epcis.AggregationEvent, ev *epcis.AggregationEvent) []*epcis.AggregationEvent {
	out := list[:0]
	for _, v := range list {
		if v != ev {
			out = append(out, v)
		}
	}
	return out
}
