package steps

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/rmagee/quartet-integrations-sub000/pkg/consolidate"
	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
	"github.com/rmagee/quartet-integrations-sub000/pkg/rules"
)

// Consolidate step parameters
const (
	ParamVendor          = "Vendor"
	ParamQuantityRegEx   = "Quantity RegEx"
	ParamTemplateName    = "Template Name"
	ParamAggregationSkew = "Aggregation Skew"
)

// ConsolidateStep parses the inbound vendor message with a consolidation
// parser and stores its events, quantity and shipment metadata.
type ConsolidateStep struct {
	base
}

// NewConsolidateStep creates the step
func NewConsolidateStep(params rules.Parameters, deps Deps) *ConsolidateStep {
	return &ConsolidateStep{base: newBase(NameConsolidate, params, deps)}
}

// Config resolves the consolidation dialect from the step parameters
func (s *ConsolidateStep) Config() (consolidate.Config, error) {
	vendor, err := s.params.String(ParamVendor)
	if err != nil {
		return consolidate.Config{}, err
	}
	cfg, ok := consolidate.Profile(strings.ToLower(vendor))
	if !ok {
		return consolidate.Config{}, &rules.ParameterError{Name: ParamVendor, Value: vendor, Reason: "unknown vendor", Err: rules.ErrInvalidParameter}
	}

	if pattern := s.params.StringOr(ParamQuantityRegEx, ""); pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return consolidate.Config{}, &rules.ParameterError{Name: ParamQuantityRegEx, Value: pattern, Reason: err.Error(), Err: rules.ErrInvalidParameter}
		}
		cfg.QuantityPattern = re
	}
	if tmpl := s.params.StringOr(ParamTemplateName, ""); tmpl != "" {
		for level := range cfg.Templates {
			cfg.Templates[level] = tmpl
		}
	}
	skew, err := s.params.DurationOr(ParamAggregationSkew, cfg.Skew)
	if err != nil {
		return consolidate.Config{}, err
	}
	cfg.Skew = skew
	cfg.Logger = s.logger
	return cfg, nil
}

// Execute implements rules.Step
func (s *ConsolidateStep) Execute(ctx context.Context, rc *rules.Context) (err error) {
	started := time.Now()
	defer func() { s.finish(started, err) }()

	cfg, err := s.Config()
	if err != nil {
		return err
	}
	msg, err := rc.Message()
	if err != nil {
		return err
	}

	p := consolidate.New(cfg)
	id, err := p.Parse(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to consolidate message: %w", err)
	}

	objects := p.ObjectEvents()
	aggs := p.AggregationEvents()
	txs := p.TransactionEvents()
	rc.Set(rules.KeyMessageID, id)
	rc.Set(rules.KeyObjectEvents, objects)
	rc.Set(rules.KeyAggregationEvents, aggs)
	rc.Set(rules.KeyTransactionEvents, txs)
	rc.Set(rules.KeyQuantity, p.Quantity())
	rc.Set(rules.KeyShipment, p.Shipment())

	vendor := strings.ToLower(s.params.StringOr(ParamVendor, ""))
	s.metrics.EventsParsed(vendor, string(epcis.KindObject), len(objects))
	s.metrics.EventsParsed(vendor, string(epcis.KindAggregation), len(aggs))
	s.metrics.EventsParsed(vendor, string(epcis.KindTransaction), len(txs))
	for _, level := range []consolidate.PackLevel{consolidate.Each, consolidate.Carton, consolidate.PartialCarton, consolidate.Pallet} {
		if ev, ok := p.CommissioningEvent(level); ok {
			s.metrics.EPCsConsolidated(vendor, string(level), len(ev.EPCs))
		}
	}

	s.logger.Debug("stored consolidated events",
		slog.String("message_id", id),
		slog.Int("quantity", p.Quantity()))
	return nil
}
