package numbering

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rmagee/quartet-integrations-sub000/pkg/gs1"
)

// Allocation turns serial numbers into identifier URNs
type Allocation struct {
	Encoding       Encoding
	CompanyPrefix  string
	ExtensionDigit string
	// GTIN is the GTIN-14 SGTINs are issued for
	GTIN string
	// PaddingLength left pads SGTIN serials with zeros when positive
	PaddingLength int
	// MinSerial and MaxSerial bound numeric serials when MaxSerial is set
	MinSerial int64
	MaxSerial int64
}

// Encode validates every serial against the range and returns their URNs.
// body is the raw response the serials came from and is attached to range
// errors.
func (a *Allocation) Encode(serials []string, body []byte) ([]string, error) {
	out := make([]string, 0, len(serials))
	for _, s := range serials {
		if err := a.checkRange(s); err != nil {
			return nil, &ResponseError{Reason: err.Error(), Body: body}
		}
		urn, err := a.encode(s)
		if err != nil {
			return nil, err
		}
		out = append(out, urn)
	}
	return out, nil
}

func (a *Allocation) checkRange(serial string) error {
	if a.MaxSerial == 0 {
		return nil
	}
	n, err := strconv.ParseInt(serial, 10, 64)
	if err != nil {
		return fmt.Errorf("serial %q is not numeric", serial)
	}
	if n < a.MinSerial || n > a.MaxSerial {
		return fmt.Errorf("serial %d outside of range %d-%d", n, a.MinSerial, a.MaxSerial)
	}
	return nil
}

func (a *Allocation) encode(serial string) (string, error) {
	switch a.Encoding {
	case EncodingSSCC:
		return gs1.SSCCURN(a.ExtensionDigit, a.CompanyPrefix, serial)
	case EncodingSGTIN:
		cp := a.CompanyPrefix
		if cp == "" {
			return "", &gs1.Error{Kind: gs1.KindInvalidCompanyPrefix, Identifier: a.GTIN, Reason: "company prefix is required for SGTIN encoding"}
		}
		if len(cp) >= 13 {
			return "", &gs1.Error{Kind: gs1.KindInvalidCompanyPrefix, Identifier: a.GTIN, Reason: "company prefix leaves no item reference"}
		}
		if len(a.GTIN) != 14 || !strings.HasPrefix(a.GTIN[1:], cp) {
			return "", &gs1.Error{Kind: gs1.KindInvalidCompanyPrefix, Identifier: a.GTIN, Reason: fmt.Sprintf("GTIN does not carry company prefix %s", cp)}
		}
		if a.PaddingLength > len(serial) {
			serial = strings.Repeat("0", a.PaddingLength-len(serial)) + serial
		}
		return gs1.EncodeSGTIN(cp, a.GTIN[:1], a.GTIN[1+len(cp):13], serial), nil
	}
	return "", fmt.Errorf("unsupported number encoding %q", a.Encoding)
}
