package steps

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rmagee/quartet-integrations-sub000/pkg/compression"
	"github.com/rmagee/quartet-integrations-sub000/pkg/consolidate"
	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
	"github.com/rmagee/quartet-integrations-sub000/pkg/render"
	"github.com/rmagee/quartet-integrations-sub000/pkg/rules"
)

// Render step parameters
const (
	ParamEnvelope         = "Envelope"
	ParamOutputKey        = "Output Key"
	ParamCompressOutput   = "Compress Output"
	ParamCompressionLevel = "Compression Level"
)

// RenderStep renders every event in the rule context into one document
// and stores it under the output key. Each event renders with its own
// context derived from the document context. With Compress Output the
// document is stored gzipped as []byte instead of a string.
type RenderStep struct {
	base
	renderer render.Renderer
	now      func() time.Time
}

// NewRenderStep creates the step. A nil renderer in deps uses the built-in
// templates.
func NewRenderStep(params rules.Parameters, deps Deps) *RenderStep {
	return &RenderStep{
		base:     newBase(NameRender, params, deps),
		renderer: deps.Renderer,
		now:      time.Now,
	}
}

// Execute implements rules.Step
func (s *RenderStep) Execute(_ context.Context, rc *rules.Context) (err error) {
	started := time.Now()
	defer func() { s.finish(started, err) }()

	r := s.renderer
	if r == nil {
		tr, err := render.NewTemplateRenderer()
		if err != nil {
			return err
		}
		r = tr
	}

	envelope := s.params.StringOr(ParamEnvelope, render.DocumentXML)
	key := s.params.StringOr(ParamOutputKey, rules.KeyOutput)
	compress, err := s.params.BoolOr(ParamCompressOutput, false)
	if err != nil {
		return err
	}
	compressor := compression.NewCompressor()
	if _, ok := s.params[ParamCompressionLevel]; ok {
		level, err := s.params.IntOr(ParamCompressionLevel, 0)
		if err != nil {
			return err
		}
		compressor = compression.NewCompressorWithLevel(level)
	}

	events := contextEvents(rc)
	if len(events) == 0 {
		return errors.New("rule context holds no events to render")
	}
	doc := s.documentContext(rc, events)
	bound := render.Bind(events...)
	for i := range bound {
		bound[i].Context = doc.ForEvent(bound[i].Event)
	}
	out, err := render.Document(r, envelope, bound, doc)
	if err != nil {
		return err
	}

	if compress && compression.ShouldCompress(render.ContentType(envelope)) {
		data, err := compressor.Compress([]byte(out))
		if err != nil {
			return &rules.ParameterError{Name: ParamCompressionLevel, Value: s.params[ParamCompressionLevel], Reason: err.Error(), Err: rules.ErrInvalidParameter}
		}
		rc.Set(key, data)
	} else {
		rc.Set(key, out)
	}

	s.logger.Debug("rendered document",
		slog.String("envelope", envelope),
		slog.String("output_key", key),
		slog.Bool("compressed", compress),
		slog.Int("events", len(events)))
	return nil
}

// documentContext builds the rendering context from what earlier steps
// stored. Missing values stay empty.
func (s *RenderStep) documentContext(rc *rules.Context, events []epcis.Eventer) *render.Context {
	shipment := rules.ValueOr[consolidate.Shipment](rc, rules.KeyShipment)
	c := &render.Context{
		DocumentID:    rules.ValueOr[string](rc, rules.KeyMessageID),
		Count:         rules.ValueOr[int](rc, rules.KeyQuantity),
		Lot:           shipment.Lot,
		Expiry:        shipment.Expiry,
		Product:       shipment.Product,
		UOM:           shipment.UOM,
		PurchaseOrder: shipment.PurchaseOrder,
		CreatedAt:     s.now().UTC(),
		Values:        make(map[string]string),
	}
	for _, ev := range events {
		common := ev.Common()
		if common.BizLocation != "" {
			c.Location = common.BizLocation
			break
		}
		if common.ReadPoint != "" {
			c.Location = common.ReadPoint
			break
		}
	}
	return c
}
