package steps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rmagee/quartet-integrations-sub000/internal/metrics"
	"github.com/rmagee/quartet-integrations-sub000/pkg/consolidate"
	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
	"github.com/rmagee/quartet-integrations-sub000/pkg/gs1"
	"github.com/rmagee/quartet-integrations-sub000/pkg/numbering"
	"github.com/rmagee/quartet-integrations-sub000/pkg/parser"
	"github.com/rmagee/quartet-integrations-sub000/pkg/render"
	"github.com/rmagee/quartet-integrations-sub000/pkg/rules"
	"github.com/rmagee/quartet-integrations-sub000/pkg/transport"
)

// Step names understood by New
const (
	NameConsolidate      = "consolidate"
	NameConvertEPCs      = "convert-epcs"
	NameAutoCommission   = "auto-commission"
	NameTemplateOverride = "template-override"
	NameRender           = "render"
	NameNumberRequest    = "number-request"
)

// ErrUnknownStep is returned by New for a name it does not know
var ErrUnknownStep = errors.New("unknown step")

// EntryStore queries the EPCIS persistence layer
type EntryStore interface {
	// EntriesByEPCs returns the persisted entries for the given
	// identifiers. Unknown identifiers are left out.
	EntriesByEPCs(ctx context.Context, epcs []string) ([]epcis.Entry, error)
	// Children returns the entries packed directly inside entry
	Children(ctx context.Context, entry epcis.Entry) ([]epcis.Entry, error)
}

// Deps are the collaborators steps are built with. Steps only check for
// the collaborators they use when they execute.
type Deps struct {
	MasterData gs1.MasterData
	Entries    EntryStore
	Renderer   render.Renderer
	// Poster sends number requests; nil uses a default transport.Client
	Poster  numbering.Poster
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

func (d Deps) logger(step string) *slog.Logger {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("step", step))
}

// New builds the named step from its parameters
func New(name string, params rules.Parameters, deps Deps) (rules.Step, error) {
	switch name {
	case NameConsolidate:
		return NewConsolidateStep(params, deps), nil
	case NameConvertEPCs:
		return NewConvertEPCsStep(params, deps), nil
	case NameAutoCommission:
		return NewAutoCommissionStep(params, deps), nil
	case NameTemplateOverride:
		return NewTemplateOverrideStep(params, deps), nil
	case NameRender:
		return NewRenderStep(params, deps), nil
	case NameNumberRequest:
		s, err := NewNumberRequestStep(params, deps)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownStep, name)
}

// Classify maps a step failure to the class reported to the host
func Classify(err error) rules.ErrorClass {
	var status *transport.StatusError
	switch {
	case err == nil:
		return rules.ClassUnknown
	case errors.Is(err, gs1.ErrInvalidEncoding),
		errors.Is(err, gs1.ErrNotImplemented),
		errors.Is(err, parser.ErrMalformedXML),
		errors.Is(err, parser.ErrInvalidEvent):
		return rules.ClassEncoding
	case errors.Is(err, gs1.ErrTradeItemConfiguration),
		errors.Is(err, gs1.ErrCompanyLookup),
		errors.Is(err, gs1.ErrInvalidCompanyPrefix),
		errors.Is(err, consolidate.ErrUnmappedIndicator),
		errors.Is(err, render.ErrUnknownTemplate),
		errors.Is(err, ErrNoEntryStore),
		errors.Is(err, rules.ErrExpectedTaskParameter),
		errors.Is(err, rules.ErrInvalidParameter),
		errors.Is(err, rules.ErrMissingContextValue):
		return rules.ClassConfiguration
	case errors.Is(err, numbering.ErrMalformedResponse),
		errors.As(err, &status):
		return rules.ClassProtocol
	}
	return rules.ClassUnknown
}

// base carries what every step shares
type base struct {
	name    string
	params  rules.Parameters
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func newBase(name string, params rules.Parameters, deps Deps) base {
	if params == nil {
		params = rules.Parameters{}
	}
	return base{
		name:    name,
		params:  params,
		logger:  deps.logger(name),
		metrics: deps.Metrics,
	}
}

// Name implements rules.Step
func (b *base) Name() string {
	return b.name
}

func (b *base) finish(started time.Time, err error) {
	class := ""
	if err != nil {
		class = Classify(err).String()
	}
	b.metrics.StepExecuted(b.name, started, class)
}

// contextEvents returns the events stored by earlier steps: object events,
// then aggregation events, then transaction events
func contextEvents(rc *rules.Context) []epcis.Eventer {
	var out []epcis.Eventer
	for _, ev := range rules.ValueOr[[]*epcis.ObjectEvent](rc, rules.KeyObjectEvents) {
		out = append(out, ev)
	}
	for _, ev := range rules.ValueOr[[]*epcis.AggregationEvent](rc, rules.KeyAggregationEvents) {
		out = append(out, ev)
	}
	for _, ev := range rules.ValueOr[[]*epcis.TransactionEvent](rc, rules.KeyTransactionEvents) {
		out = append(out, ev)
	}
	return out
}
