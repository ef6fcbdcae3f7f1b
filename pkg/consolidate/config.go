package consolidate

import (
	"log/slog"
	"regexp"
	"time"

	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
	"github.com/rmagee/quartet-integrations-sub000/pkg/parser"
	"github.com/rmagee/quartet-integrations-sub000/pkg/render"
)

// PackLevel is a packaging tier
type PackLevel string

const (
	Each          PackLevel = "each"
	Carton        PackLevel = "carton"
	PartialCarton PackLevel = "partial_carton"
	Pallet        PackLevel = "pallet"
)

// DefaultSkew is how far aggregation events are moved past the
// commissioning events they depend on
const DefaultSkew = 10 * time.Second

// ILMDNames names the ILMD attributes shipment metadata is read from
type ILMDNames struct {
	Lot     string
	Expiry  string
	Product string
	UOM     string
}

// DefaultILMDNames are the CBV master data attribute names
var DefaultILMDNames = ILMDNames{
	Lot:     epcis.ILMDLotNumber,
	Expiry:  epcis.ILMDExpirationDate,
	Product: epcis.ILMDAdditionalTradeItemID,
	UOM:     epcis.ILMDUnitOfMeasure,
}

// Config selects the vendor dialect of a consolidation parser
type Config struct {
	// PackLevels maps the SGTIN indicator digit to a pack level. SSCCs are
	// always pallets.
	PackLevels map[byte]PackLevel
	// Templates binds consolidated commissioning events per pack level
	Templates map[PackLevel]string
	// DefaultTemplate binds object events that pass through unchanged
	DefaultTemplate string
	// QuantityPattern selects the EPCs counted by Quantity; nil counts all
	QuantityPattern *regexp.Regexp
	// Skew is added to aggregation event times
	Skew time.Duration

	ILMDNames ILMDNames
	// ProductExtensions lists extension attributes used as the product
	// code when no ILMD attribute carries one
	ProductExtensions []string
	Extensions        parser.ExtensionElementHandler
	Logger            *slog.Logger
}

// Optel returns the Optel dialect: indicator 0 is an each and 5 a carton
func Optel() Config {
	return Config{
		PackLevels: map[byte]PackLevel{'0': Each, '5': Carton},
		Templates: map[PackLevel]string{
			Each:          render.OptelCommissioning,
			Carton:        render.OptelCommissioning,
			PartialCarton: render.OptelCommissioning,
			Pallet:        render.OptelCommissioning,
		},
		DefaultTemplate:   render.ObjectEventXML,
		QuantityPattern:   regexp.MustCompile(`^urn:epc:id:sgtin:[0-9]+\.0[0-9]*\.`),
		Skew:              DefaultSkew,
		ILMDNames:         DefaultILMDNames,
		ProductExtensions: []string{"MATNR", "material"},
		Extensions:        parser.SAPExtension{},
	}
}

// Traxeed returns the Traxeed dialect: indicator 1 is an each and 2 a
// carton
func Traxeed() Config {
	return Config{
		PackLevels: map[byte]PackLevel{'1': Each, '2': Carton},
		Templates: map[PackLevel]string{
			Each:          render.ObjectEventXML,
			Carton:        render.ObjectEventXML,
			PartialCarton: render.ObjectEventXML,
			Pallet:        render.ObjectEventXML,
		},
		DefaultTemplate: render.ObjectEventXML,
		QuantityPattern: regexp.MustCompile(`^urn:epc:id:sgtin:[0-9]+\.1[0-9]*\.`),
		Skew:            DefaultSkew,
		ILMDNames:       DefaultILMDNames,
		Extensions:      parser.Chain(parser.USHealthcare{}, parser.Capture),
	}
}

// Profile returns the named dialect
func Profile(vendor string) (Config, bool) {
	switch vendor {
	case "optel":
		return Optel(), true
	case "traxeed":
		return Traxeed(), true
	}
	return Config{}, false
}
