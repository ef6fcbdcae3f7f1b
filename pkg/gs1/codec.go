package gs1

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// ssccTrialStart and ssccTrialEnd bound the end index of the candidate company prefix
// taken from an SSCC-18 (the extension digit is skipped).
const (
	ssccTrialStart = 8
	ssccTrialEnd   = 17
)

// TradeItem is the master data needed to split a GTIN-14
type TradeItem struct {
	GTIN14        string
	CompanyPrefix string
	NDC           string
	Name          string
	UnitOfMeasure string
}

// Company is a GS1 member company
type Company struct {
	ID            string
	Name          string
	CompanyPrefix string
	SGLN          string
}

// MasterData looks up trade items and companies. Both methods return a nil
// result without error when nothing matches.
type MasterData interface {
	TradeItemByGTIN(ctx context.Context, gtin14 string) (*TradeItem, error)
	CompaniesByPrefix(ctx context.Context, prefix string) ([]Company, error)
}

// Codec converts vendor identifiers into compliant GS1 URNs. Lookups are
// cached for the lifetime of the Codec; create one per parse or conversion
// session. A Codec is not safe for concurrent use.
type Codec struct {
	masterData    MasterData
	prefixCache   map[string]int
	materialCache map[string]*TradeItem
	logger        *slog.Logger
}

// NewCodec creates a codec backed by the given master data
func NewCodec(masterData MasterData, logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Codec{
		masterData:    masterData,
		prefixCache:   make(map[string]int),
		materialCache: make(map[string]*TradeItem),
		logger:        logger,
	}
}

// TradeItem returns the trade item for a GTIN-14, consulting the material
// cache first.
func (c *Codec) TradeItem(ctx context.Context, gtin14 string) (*TradeItem, error) {
	if item, ok := c.materialCache[gtin14]; ok {
		return item, nil
	}
	if c.masterData == nil {
		return nil, &Error{Kind: KindTradeItemConfiguration, Identifier: gtin14, Reason: "no master data source is configured"}
	}
	item, err := c.masterData.TradeItemByGTIN(ctx, gtin14)
	if err != nil {
		return nil, fmt.Errorf("looking up trade item %s: %w", gtin14, err)
	}
	if item == nil {
		return nil, &Error{
			Kind:       KindTradeItemConfiguration,
			Identifier: gtin14,
			Reason:     "no trade item is configured for this GTIN; add the trade item and its company before retrying",
		}
	}
	c.materialCache[gtin14] = item
	return item, nil
}

// ResolveCompanyPrefixLength returns the company prefix length for a
// GTIN-14 or an SSCC-18.
func (c *Codec) ResolveCompanyPrefixLength(ctx context.Context, id string) (int, error) {
	if !isDigits(id) {
		return 0, encodingError(id, "identifier must be numeric")
	}
	switch len(id) {
	case gtinBodyLength + 1:
		return c.gtinPrefixLength(ctx, id)
	case ssccBodyLength + 1:
		return c.ssccPrefixLength(ctx, id)
	}
	return 0, &Error{Kind: KindInvalidEncoding, Identifier: id, Reason: "expected a GTIN-14 or SSCC-18", Expected: gtinBodyLength + 1, Actual: len(id)}
}

func (c *Codec) gtinPrefixLength(ctx context.Context, gtin14 string) (int, error) {
	if n, ok := c.prefixCache[gtin14]; ok {
		return n, nil
	}
	item, err := c.TradeItem(ctx, gtin14)
	if err != nil {
		return 0, err
	}
	n := len(item.CompanyPrefix)
	if n == 0 {
		return 0, &Error{Kind: KindTradeItemConfiguration, Identifier: gtin14, Reason: "trade item has no company prefix"}
	}
	if n >= gtinBodyLength || gtin14[1:1+n] != item.CompanyPrefix {
		return 0, &Error{
			Kind:       KindTradeItemConfiguration,
			Identifier: gtin14,
			Reason:     fmt.Sprintf("configured company prefix %s does not match the GTIN", item.CompanyPrefix),
		}
	}
	c.prefixCache[gtin14] = n
	return n, nil
}

func (c *Codec) ssccPrefixLength(ctx context.Context, sscc string) (int, error) {
	for end := ssccTrialStart; end <= ssccTrialEnd; end++ {
		if n, ok := c.prefixCache[ssccCacheKey(sscc[1:end])]; ok {
			return n, nil
		}
	}
	if c.masterData == nil {
		return 0, &Error{Kind: KindCompanyLookup, Identifier: sscc, Reason: "no master data source is configured"}
	}
	for end := ssccTrialStart; end <= ssccTrialEnd; end++ {
		candidate := sscc[1:end]
		companies, err := c.masterData.CompaniesByPrefix(ctx, candidate)
		if err != nil {
			return 0, fmt.Errorf("looking up company prefix %s: %w", candidate, err)
		}
		switch len(companies) {
		case 0:
			continue
		case 1:
			c.prefixCache[ssccCacheKey(candidate)] = len(candidate)
			c.logger.Debug("resolved SSCC company prefix",
				slog.String("sscc", sscc),
				slog.String("company_prefix", candidate),
				slog.String("company", companies[0].Name))
			return len(candidate), nil
		default:
			return 0, &Error{
				Kind:       KindCompanyLookup,
				Identifier: sscc,
				Reason:     fmt.Sprintf("%d companies share prefix %s", len(companies), candidate),
			}
		}
	}
	return 0, &Error{Kind: KindCompanyLookup, Identifier: sscc, Reason: "no company matches any candidate prefix"}
}

// ssccCacheKey namespaces SSCC prefixes inside the shared prefix cache
func ssccCacheKey(prefix string) string {
	return "sscc:" + prefix
}

// NeedsConversion reports whether epc uses the vendor shorthand
// urn:epc:id:sgtin:{gtin14}.{serial}.
func NeedsConversion(epc string) bool {
	if !IsSGTIN(epc) {
		return false
	}
	parts := strings.Split(strings.TrimPrefix(epc, SGTINPrefix), ".")
	return len(parts) == 2 && len(parts[0]) == gtinBodyLength+1 && isDigits(parts[0])
}

// ConvertVendorGTINSerial rewrites urn:epc:id:sgtin:{gtin14}.{serial} into
// a compliant SGTIN URN using the configured company prefix length.
func (c *Codec) ConvertVendorGTINSerial(ctx context.Context, epc string) (string, error) {
	switch {
	case IsSGTIN(epc):
	case IsSSCC(epc):
		return "", &Error{Kind: KindNotImplemented, Identifier: epc, Reason: "SSCC vendor shorthand conversion is not supported"}
	default:
		return "", encodingError(epc, "only sgtin and sscc URNs can be converted")
	}

	rest := strings.TrimPrefix(epc, SGTINPrefix)
	dot := strings.IndexByte(rest, '.')
	if dot < 0 {
		return "", encodingError(epc, "missing serial number segment")
	}
	gtin, serial := rest[:dot], rest[dot+1:]
	if len(gtin) != gtinBodyLength+1 || !isDigits(gtin) {
		return "", &Error{Kind: KindInvalidEncoding, Identifier: epc, Reason: "vendor GTIN segment must be a GTIN-14", Expected: gtinBodyLength + 1, Actual: len(gtin)}
	}
	n, err := c.ResolveCompanyPrefixLength(ctx, gtin)
	if err != nil {
		return "", err
	}
	return EncodeSGTIN(gtin[1:1+n], gtin[:1], gtin[1+n:gtinBodyLength], serial), nil
}

// BarcodeToURN converts a GS1 element string into an SGTIN or SSCC URN
func (c *Codec) BarcodeToURN(ctx context.Context, barcode string) (string, error) {
	es, err := ParseElementString(barcode)
	if err != nil {
		return "", err
	}
	if es.SSCC != "" {
		n, err := c.ResolveCompanyPrefixLength(ctx, es.SSCC)
		if err != nil {
			return "", err
		}
		return SSCC{
			Extension:       es.SSCC[:1],
			CompanyPrefix:   es.SSCC[1 : 1+n],
			SerialReference: es.SSCC[1+n : ssccBodyLength],
		}.URN(), nil
	}
	if es.Serial == "" {
		return "", encodingError(barcode, "GTIN barcode has no serial number")
	}
	n, err := c.ResolveCompanyPrefixLength(ctx, es.GTIN)
	if err != nil {
		return "", err
	}
	return EncodeSGTIN(es.GTIN[1:1+n], es.GTIN[:1], es.GTIN[1+n:gtinBodyLength], es.Serial), nil
}
