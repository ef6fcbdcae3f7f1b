package consolidate

import (
	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
)

// MessageID returns the identifier of the last parsed message
func (p *Parser) MessageID() string {
	return p.messageID
}

// ObjectEvents returns consolidated commissioning events and pass-through
// object events in creation order. Commissioning events left empty by
// disaggregation are omitted.
func (p *Parser) ObjectEvents() []*epcis.ObjectEvent {
	out := make([]*epcis.ObjectEvent, 0, len(p.objects))
	for _, ev := range p.objects {
		if _, ok := p.consolidated[ev]; ok && len(ev.EPCs) == 0 {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// AggregationEvents returns the emitted aggregation events with adjusted
// times. Disaggregations applied to tracked pallets are not included.
func (p *Parser) AggregationEvents() []*epcis.AggregationEvent {
	return append([]*epcis.AggregationEvent(nil), p.aggregations...)
}

// TransactionEvents returns the transaction events as received
func (p *Parser) TransactionEvents() []*epcis.TransactionEvent {
	return append([]*epcis.TransactionEvent(nil), p.transactions...)
}

// Events returns object events, then aggregation events, then transaction
// events
func (p *Parser) Events() []epcis.Eventer {
	var out []epcis.Eventer
	for _, ev := range p.ObjectEvents() {
		out = append(out, ev)
	}
	for _, ev := range p.aggregations {
		out = append(out, ev)
	}
	for _, ev := range p.transactions {
		out = append(out, ev)
	}
	return out
}

// CommissioningEvent returns the consolidated event of a pack level
func (p *Parser) CommissioningEvent(level PackLevel) (*epcis.ObjectEvent, bool) {
	ev, ok := p.levels[level]
	if !ok || len(ev.EPCs) == 0 {
		return nil, false
	}
	return ev, true
}

// Quantity counts the commissioned EPCs matching the quantity pattern
func (p *Parser) Quantity() int {
	n := 0
	for _, ev := range p.objects {
		if _, ok := p.consolidated[ev]; !ok {
			continue
		}
		for _, epc := range ev.EPCs {
			if p.cfg.QuantityPattern == nil || p.cfg.QuantityPattern.MatchString(epc) {
				n++
			}
		}
	}
	return n
}

// Shipment returns the shipment metadata of the last parse
func (p *Parser) Shipment() Shipment {
	return p.shipment
}

// Pallets returns the SSCCs still in the working set, in the order they
// were first seen
func (p *Parser) Pallets() []string {
	return append([]string(nil), p.palletOrder...)
}

// PalletContents returns the children currently packed on a tracked pallet
func (p *Parser) PalletContents(sscc string) []string {
	pal, ok := p.pallets[sscc]
	if !ok {
		return nil
	}
	var out []string
	for _, agg := range pal.aggs {
		out = append(out, agg.ChildEPCs...)
	}
	return out
}
