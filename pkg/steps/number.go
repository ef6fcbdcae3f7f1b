package steps

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rmagee/quartet-integrations-sub000/pkg/numbering"
	"github.com/rmagee/quartet-integrations-sub000/pkg/rules"
)

// Number request step parameters
const (
	ParamEndpoint       = "Endpoint"
	ParamSOAPAction     = "SOAP Action"
	ParamQuantity       = "Quantity"
	ParamEncoding       = "Encoding"
	ParamGTIN           = "GTIN"
	ParamCompanyPrefix  = "Company Prefix"
	ParamExtensionDigit = "Extension Digit"
	ParamPaddingLength  = "Padding Length"
	ParamMinSerial      = "Min Serial"
	ParamMaxSerial      = "Max Serial"
)

// NumberRequestStep requests serial numbers from an external numbering
// system and stores their URNs under rules.KeyNumbers. Without a Quantity
// parameter the quantity stored by an earlier step is requested.
type NumberRequestStep struct {
	base
	extensionDigit string
	poster         numbering.Poster
}

// NewNumberRequestStep creates the step. The extension digit is checked
// here; every other parameter is read when the step executes.
func NewNumberRequestStep(params rules.Parameters, deps Deps) (*NumberRequestStep, error) {
	s := &NumberRequestStep{base: newBase(NameNumberRequest, params, deps), poster: deps.Poster}
	digit, err := s.params.IntOr(ParamExtensionDigit, 0)
	if err != nil {
		return nil, err
	}
	if digit < 0 || digit > 9 {
		return nil, &rules.ParameterError{Name: ParamExtensionDigit, Value: s.params[ParamExtensionDigit], Reason: "must be between 0 and 9", Err: rules.ErrInvalidParameter}
	}
	s.extensionDigit = string(rune('0' + digit))
	return s, nil
}

// Execute implements rules.Step
func (s *NumberRequestStep) Execute(ctx context.Context, rc *rules.Context) (err error) {
	started := time.Now()
	defer func() { s.finish(started, err) }()

	endpoint, err := s.params.String(ParamEndpoint)
	if err != nil {
		return err
	}
	raw, err := s.params.String(ParamEncoding)
	if err != nil {
		return err
	}
	encoding, err := numbering.ParseEncoding(raw)
	if err != nil {
		return &rules.ParameterError{Name: ParamEncoding, Value: raw, Reason: err.Error(), Err: rules.ErrInvalidParameter}
	}
	quantity, err := s.params.IntOr(ParamQuantity, rules.ValueOr[int](rc, rules.KeyQuantity))
	if err != nil {
		return err
	}
	if quantity <= 0 {
		return &rules.ParameterError{Name: ParamQuantity, Value: s.params[ParamQuantity], Reason: "must be positive", Err: rules.ErrInvalidParameter}
	}

	alloc := &numbering.Allocation{
		Encoding:       encoding,
		CompanyPrefix:  s.params.StringOr(ParamCompanyPrefix, ""),
		ExtensionDigit: s.extensionDigit,
		GTIN:           s.params.StringOr(ParamGTIN, ""),
	}
	if alloc.PaddingLength, err = s.params.IntOr(ParamPaddingLength, 0); err != nil {
		return err
	}
	if alloc.MinSerial, err = s.params.Int64Or(ParamMinSerial, 0); err != nil {
		return err
	}
	if alloc.MaxSerial, err = s.params.Int64Or(ParamMaxSerial, 0); err != nil {
		return err
	}

	client := numbering.NewClient(&numbering.ClientConfig{
		Endpoint:   endpoint,
		SOAPAction: s.params.StringOr(ParamSOAPAction, ""),
		Poster:     s.poster,
		Logger:     s.logger,
	})
	resp, err := client.Request(ctx, &numbering.Request{
		Encoding:       encoding,
		GTIN:           alloc.GTIN,
		CompanyPrefix:  alloc.CompanyPrefix,
		ExtensionDigit: alloc.ExtensionDigit,
		Quantity:       quantity,
	})
	if err != nil {
		return err
	}

	urns, err := alloc.Encode(resp.Serials, resp.Raw)
	if err != nil {
		var re *numbering.ResponseError
		if errors.As(err, &re) {
			s.logger.Error("numbering system returned unusable serials",
				slog.String("request_id", resp.RequestID),
				slog.String("response", string(re.Body)),
				slog.String("error", re.Reason))
		}
		return err
	}
	rc.Set(rules.KeyNumbers, urns)
	s.metrics.NumbersIssued(string(encoding), len(urns))

	s.logger.Info("received serial numbers",
		slog.String("request_id", resp.RequestID),
		slog.String("encoding", string(encoding)),
		slog.Int("count", len(urns)))
	return nil
}
