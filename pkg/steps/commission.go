package steps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rmagee/quartet-integrations-sub000/pkg/consolidate"
	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
	"github.com/rmagee/quartet-integrations-sub000/pkg/render"
	"github.com/rmagee/quartet-integrations-sub000/pkg/rules"
)

// Auto commission step parameters
const (
	ParamCommissionOffset   = "Commission Offset"
	ParamSkipPackedChildren = "Skip Packed Children"
)

// ErrNoEntryStore is returned when a step needs the persistence layer and
// none is configured
var ErrNoEntryStore = errors.New("no entry store is configured")

// AutoCommissionStep commissions the identifiers that aggregation events in
// the rule context reference but that were never commissioned. One ADD
// event is created for all of them and placed before the other object
// events, timed Commission Offset ahead of the earliest aggregation.
//
// Children already packed under a persisted parent are removed from that
// parent's aggregation unless Skip Packed Children is false; aggregations
// left without children are dropped.
type AutoCommissionStep struct {
	base
	entries EntryStore
}

// NewAutoCommissionStep creates the step
func NewAutoCommissionStep(params rules.Parameters, deps Deps) *AutoCommissionStep {
	return &AutoCommissionStep{base: newBase(NameAutoCommission, params, deps), entries: deps.Entries}
}

// Execute implements rules.Step
func (s *AutoCommissionStep) Execute(ctx context.Context, rc *rules.Context) (err error) {
	started := time.Now()
	defer func() { s.finish(started, err) }()

	if s.entries == nil {
		return ErrNoEntryStore
	}
	offset, err := s.params.DurationOr(ParamCommissionOffset, consolidate.DefaultSkew)
	if err != nil {
		return err
	}
	skipPacked, err := s.params.BoolOr(ParamSkipPackedChildren, true)
	if err != nil {
		return err
	}
	tmpl := s.params.StringOr(ParamTemplateName, render.ObjectEventXML)

	objects := rules.ValueOr[[]*epcis.ObjectEvent](rc, rules.KeyObjectEvents)
	aggs := rules.ValueOr[[]*epcis.AggregationEvent](rc, rules.KeyAggregationEvents)

	var (
		ids   []string
		first *epcis.AggregationEvent
	)
	seen := make(map[string]struct{})
	for _, ev := range objects {
		if ev.Action == epcis.ActionAdd {
			for _, epc := range ev.EPCs {
				seen[epc] = struct{}{}
			}
		}
	}
	for _, agg := range aggs {
		if agg.Action != epcis.ActionAdd {
			continue
		}
		if first == nil || agg.EventTime.Before(first.EventTime) {
			first = agg
		}
		for _, id := range agg.Identifiers() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	if first == nil {
		return nil
	}

	entries, err := s.entries.EntriesByEPCs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to look up entries: %w", err)
	}
	known := make(map[string]epcis.Entry, len(entries))
	for _, e := range entries {
		known[e.Identifier] = e
		if e.Decommissioned {
			s.logger.Warn("aggregation references a decommissioned identifier",
				slog.String("epc", e.Identifier))
		}
	}

	if skipPacked {
		if aggs, err = s.dropPacked(ctx, aggs, known); err != nil {
			return err
		}
		rc.Set(rules.KeyAggregationEvents, aggs)
	}

	var missing []string
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	ev := &epcis.ObjectEvent{
		Event: epcis.Event{
			Action:              epcis.ActionAdd,
			BizStep:             epcis.BizStepCommissioning,
			Disposition:         epcis.DispositionActive,
			ReadPoint:           first.ReadPoint,
			BizLocation:         first.BizLocation,
			EventTime:           first.EventTime.Add(-offset),
			RecordTime:          first.EventTime.Add(-offset),
			EventTimeZoneOffset: first.EventTimeZoneOffset,
			Template:            tmpl,
		},
		EPCs: missing,
	}
	rc.Set(rules.KeyObjectEvents, append([]*epcis.ObjectEvent{ev}, objects...))

	s.logger.Info("commissioned unknown identifiers",
		slog.Int("epcs", len(missing)),
		slog.Int("known", len(known)))
	return nil
}

// dropPacked removes children that are already packed under their
// persisted parent. All lookups happen before any event is changed, so a
// failed lookup leaves the aggregations untouched.
func (s *AutoCommissionStep) dropPacked(ctx context.Context, aggs []*epcis.AggregationEvent, known map[string]epcis.Entry) ([]*epcis.AggregationEvent, error) {
	packed := make(map[*epcis.AggregationEvent][]epcis.Entry)
	for _, agg := range aggs {
		parent, ok := known[agg.ParentID]
		if !ok || agg.Action != epcis.ActionAdd {
			continue
		}
		children, err := s.entries.Children(ctx, parent)
		if err != nil {
			return nil, fmt.Errorf("failed to look up children of %s: %w", parent.Identifier, err)
		}
		packed[agg] = children
	}

	out := make([]*epcis.AggregationEvent, 0, len(aggs))
	for _, agg := range aggs {
		for _, child := range packed[agg] {
			agg.RemoveChild(child.Identifier)
		}
		if _, ok := packed[agg]; ok && len(agg.ChildEPCs) == 0 {
			s.logger.Debug("dropped aggregation of already packed children",
				slog.String("parent", agg.ParentID))
			continue
		}
		out = append(out, agg)
	}
	return out, nil
}
