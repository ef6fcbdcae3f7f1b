package gs1

import (
	"strings"
)

// Application identifiers understood by ParseElementString
const (
	AISSCC       = "00"
	AIGTIN       = "01"
	AIBatch      = "10"
	AIExpiration = "17"
	AISerial     = "21"
)

// group separator (FNC1) terminating variable length fields
const groupSeparator = "\x1d"

var fixedLengthAIs = map[string]int{
	AISSCC:       18,
	AIGTIN:       14,
	AIExpiration: 6,
}

var variableLengthAIs = map[string]int{
	AIBatch:  20,
	AISerial: 20,
}

// ElementString is a decoded GS1 barcode payload
type ElementString struct {
	SSCC       string
	GTIN       string
	Lot        string
	Expiration string // YYMMDD
	Serial     string
}

// ParseElementString decodes a GS1 element string as scanned from a
// DataMatrix or GS1-128 symbol, either in human readable form
// "(01)...(21)..." or raw form with FNC1 separators. A leading symbology
// identifier such as "]d2" is ignored.
func ParseElementString(barcode string) (ElementString, error) {
	raw := strings.TrimSpace(barcode)
	if strings.HasPrefix(raw, "]") && len(raw) > 3 {
		raw = raw[3:]
	}
	if strings.HasPrefix(raw, "(") {
		return parseParenthesized(barcode, raw)
	}
	return parseRaw(barcode, raw)
}

func parseParenthesized(original, raw string) (ElementString, error) {
	var es ElementString
	for raw != "" {
		if raw[0] != '(' {
			return es, encodingError(original, "expected '(' before application identifier")
		}
		end := strings.IndexByte(raw, ')')
		if end < 0 {
			return es, encodingError(original, "unterminated application identifier")
		}
		ai := raw[1:end]
		raw = raw[end+1:]
		next := strings.IndexByte(raw, '(')
		if next < 0 {
			next = len(raw)
		}
		if err := es.set(original, ai, raw[:next]); err != nil {
			return es, err
		}
		raw = raw[next:]
	}
	return es, es.validate(original)
}

func parseRaw(original, raw string) (ElementString, error) {
	var es ElementString
	for raw != "" {
		if len(raw) < 2 {
			return es, encodingError(original, "truncated application identifier")
		}
		ai := raw[:2]
		raw = raw[2:]
		if n, ok := fixedLengthAIs[ai]; ok {
			if len(raw) < n {
				return es, lengthError(original, n, len(raw))
			}
			if err := es.set(original, ai, raw[:n]); err != nil {
				return es, err
			}
			raw = strings.TrimPrefix(raw[n:], groupSeparator)
			continue
		}
		if _, ok := variableLengthAIs[ai]; ok {
			end := strings.Index(raw, groupSeparator)
			value := raw
			if end >= 0 {
				value = raw[:end]
				raw = raw[end+1:]
			} else {
				raw = ""
			}
			if err := es.set(original, ai, value); err != nil {
				return es, err
			}
			continue
		}
		return es, encodingError(original, "unsupported application identifier "+ai)
	}
	return es, es.validate(original)
}

func (es *ElementString) set(original, ai, value string) error {
	if n, ok := fixedLengthAIs[ai]; ok && len(value) != n {
		return lengthError(original, n, len(value))
	}
	if n, ok := variableLengthAIs[ai]; ok && (value == "" || len(value) > n) {
		return encodingError(original, "field "+ai+" must be 1 to 20 characters")
	}
	switch ai {
	case AISSCC:
		es.SSCC = value
	case AIGTIN:
		es.GTIN = value
	case AIBatch:
		es.Lot = value
	case AIExpiration:
		es.Expiration = value
	case AISerial:
		es.Serial = value
	default:
		return encodingError(original, "unsupported application identifier "+ai)
	}
	return nil
}

func (es *ElementString) validate(original string) error {
	if es.SSCC == "" && es.GTIN == "" {
		return encodingError(original, "element string carries neither GTIN nor SSCC")
	}
	if es.GTIN != "" && !ValidCheckDigit(es.GTIN) {
		return encodingError(original, "GTIN check digit mismatch")
	}
	if es.SSCC != "" && !ValidCheckDigit(es.SSCC) {
		return encodingError(original, "SSCC check digit mismatch")
	}
	return nil
}
