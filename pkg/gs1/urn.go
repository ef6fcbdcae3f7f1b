package gs1

import (
	"fmt"
	"strings"
)

// URN prefixes for the identifier schemes the adapters handle
const (
	SGTINPrefix = "urn:epc:id:sgtin:"
	SSCCPrefix  = "urn:epc:id:sscc:"
	SGLNPrefix  = "urn:epc:id:sgln:"
	EPCIDPrefix = "urn:epc:id:"
)

const (
	gtinBodyLength = 13 // GTIN-14 without check digit
	ssccBodyLength = 17 // SSCC-18 without check digit
)

// SGTIN is a decoded serialized GTIN
type SGTIN struct {
	CompanyPrefix string
	Indicator     string
	ItemReference string
	Serial        string
}

// URN returns the pure identity URN
func (s SGTIN) URN() string {
	return EncodeSGTIN(s.CompanyPrefix, s.Indicator, s.ItemReference, s.Serial)
}

// GTIN14 rebuilds the GTIN-14 including its check digit
func (s SGTIN) GTIN14() (string, error) {
	body := s.Indicator + s.CompanyPrefix + s.ItemReference
	if len(body) != gtinBodyLength {
		return "", lengthError(s.URN(), gtinBodyLength, len(body))
	}
	check, err := CheckDigit(body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", body, check), nil
}

// SSCC is a decoded serial shipping container code
type SSCC struct {
	Extension       string
	CompanyPrefix   string
	SerialReference string
}

// URN returns the pure identity URN
func (s SSCC) URN() string {
	return SSCCPrefix + s.CompanyPrefix + "." + s.Extension + s.SerialReference
}

// SSCC18 returns the 18 digit SSCC
func (s SSCC) SSCC18() (string, error) {
	return EncodeSSCC(s.Extension, s.CompanyPrefix, s.SerialReference)
}

// EncodeSGTIN formats an SGTIN pure identity URN. Digit lengths are not
// checked; malformed input produces a malformed URN rather than an error.
func EncodeSGTIN(companyPrefix, indicator, itemReference, serial string) string {
	return fmt.Sprintf("%s%s.%s%s.%s", SGTINPrefix, companyPrefix, indicator, itemReference, serial)
}

// EncodeSSCC builds an 18 digit SSCC. The serial reference is left padded
// with zeros so that extension, company prefix and serial fill 17 digits,
// then the GS1 check digit is appended.
func EncodeSSCC(extension, companyPrefix, serialReference string) (string, error) {
	if companyPrefix == "" {
		return "", &Error{Kind: KindInvalidCompanyPrefix, Identifier: serialReference, Reason: "company prefix is required for SSCC encoding"}
	}
	width := ssccBodyLength - len(extension) - len(companyPrefix)
	if width < len(serialReference) {
		raw := extension + companyPrefix + serialReference
		return "", lengthError(raw, ssccBodyLength, len(raw))
	}
	body := extension + companyPrefix + strings.Repeat("0", width-len(serialReference)) + serialReference
	check, err := CheckDigit(body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", body, check), nil
}

// SSCCURN builds the SSCC pure identity URN with the serial reference padded
// the same way EncodeSSCC pads it.
func SSCCURN(extension, companyPrefix, serialReference string) (string, error) {
	sscc, err := EncodeSSCC(extension, companyPrefix, serialReference)
	if err != nil {
		return "", err
	}
	serial := sscc[len(extension)+len(companyPrefix) : ssccBodyLength]
	return SSCC{Extension: extension, CompanyPrefix: companyPrefix, SerialReference: serial}.URN(), nil
}

// IsSGTIN reports whether epc is an SGTIN URN
func IsSGTIN(epc string) bool {
	return strings.HasPrefix(epc, SGTINPrefix)
}

// IsSSCC reports whether epc is an SSCC URN
func IsSSCC(epc string) bool {
	return strings.HasPrefix(epc, SSCCPrefix)
}

// ParseSGTIN decodes urn:epc:id:sgtin:{cp}.{indicator}{itemref}.{serial}
func ParseSGTIN(epc string) (SGTIN, error) {
	if !IsSGTIN(epc) {
		return SGTIN{}, encodingError(epc, "not an SGTIN URN")
	}
	parts := strings.SplitN(strings.TrimPrefix(epc, SGTINPrefix), ".", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return SGTIN{}, encodingError(epc, "expected company prefix, item reference and serial segments")
	}
	return SGTIN{
		CompanyPrefix: parts[0],
		Indicator:     parts[1][:1],
		ItemReference: parts[1][1:],
		Serial:        parts[2],
	}, nil
}

// ParseSSCC decodes urn:epc:id:sscc:{cp}.{extension}{serialref}
func ParseSSCC(epc string) (SSCC, error) {
	if !IsSSCC(epc) {
		return SSCC{}, encodingError(epc, "not an SSCC URN")
	}
	parts := strings.SplitN(strings.TrimPrefix(epc, SSCCPrefix), ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return SSCC{}, encodingError(epc, "expected company prefix and serial reference segments")
	}
	return SSCC{
		CompanyPrefix:   parts[0],
		Extension:       parts[1][:1],
		SerialReference: parts[1][1:],
	}, nil
}

// Indicator returns the indicator digit of an SGTIN URN, the first
// character after the company prefix segment.
func Indicator(epc string) (byte, error) {
	sgtin, err := ParseSGTIN(epc)
	if err != nil {
		return 0, err
	}
	return sgtin.Indicator[0], nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
