package steps

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
	"github.com/rmagee/quartet-integrations-sub000/pkg/render"
	"github.com/rmagee/quartet-integrations-sub000/pkg/rules"
)

// ParamEventKind limits a template override to a comma separated list of
// event kinds
const ParamEventKind = "Event Kind"

// TemplateOverrideStep rebinds the template of the events in the rule
// context
type TemplateOverrideStep struct {
	base
}

// NewTemplateOverrideStep creates the step
func NewTemplateOverrideStep(params rules.Parameters, deps Deps) *TemplateOverrideStep {
	return &TemplateOverrideStep{base: newBase(NameTemplateOverride, params, deps)}
}

// Execute implements rules.Step
func (s *TemplateOverrideStep) Execute(_ context.Context, rc *rules.Context) (err error) {
	started := time.Now()
	defer func() { s.finish(started, err) }()

	tmpl, err := s.params.String(ParamTemplateName)
	if err != nil {
		return err
	}
	kinds, err := s.kinds()
	if err != nil {
		return err
	}

	n := render.Override(contextEvents(rc), tmpl, kinds...)
	s.logger.Debug("overrode event templates",
		slog.String("template", tmpl),
		slog.Int("events", n))
	return nil
}

func (s *TemplateOverrideStep) kinds() ([]epcis.Kind, error) {
	raw := s.params.StringOr(ParamEventKind, "")
	if raw == "" {
		return nil, nil
	}
	var kinds []epcis.Kind
	for _, part := range strings.Split(raw, ",") {
		switch k := epcis.Kind(strings.TrimSpace(part)); k {
		case epcis.KindObject, epcis.KindAggregation, epcis.KindTransaction:
			kinds = append(kinds, k)
		default:
			return nil, &rules.ParameterError{Name: ParamEventKind, Value: raw, Reason: "unknown event kind " + part, Err: rules.ErrInvalidParameter}
		}
	}
	return kinds, nil
}
