package numbering

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
)

// Namespaces of the serial number request envelope
const (
	NamespaceSOAP      = "http://schemas.xmlsoap.org/soap/envelope/"
	NamespaceNumbering = "urn:epcis-adapter:numbering:1"
)

// ErrMalformedResponse is matched by every *ResponseError
var ErrMalformedResponse = errors.New("malformed number response")

// Encoding selects the identifier type numbers are requested for
type Encoding string

const (
	EncodingSGTIN Encoding = "sgtin"
	EncodingSSCC  Encoding = "sscc"
)

// ParseEncoding validates an encoding name
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(strings.TrimSpace(s))); e {
	case EncodingSGTIN, EncodingSSCC:
		return e, nil
	}
	return "", fmt.Errorf("unsupported number encoding %q", s)
}

// Request asks a numbering system for serial numbers
type Request struct {
	ID             string
	Encoding       Encoding
	GTIN           string
	CompanyPrefix  string
	ExtensionDigit string
	Quantity       int
	CreatedAt      time.Time
}

// Response is the decoded answer of a numbering system
type Response struct {
	RequestID string
	Serials   []string
	// Raw is the response body the serials were read from
	Raw []byte
}

// ResponseError reports an answer that could not be used. Body holds the
// raw response for diagnostics.
type ResponseError struct {
	Reason string
	Body   []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMalformedResponse, e.Reason)
}

// Is matches ErrMalformedResponse
func (e *ResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// BuildRequest renders req as a SOAP 1.1 envelope
func BuildRequest(req *Request) ([]byte, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", req.Quantity)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	env := doc.CreateElement("soapenv:Envelope")
	env.CreateAttr("xmlns:soapenv", NamespaceSOAP)
	env.CreateAttr("xmlns:sn", NamespaceNumbering)
	env.CreateElement("soapenv:Header")
	body := env.CreateElement("soapenv:Body")

	r := body.CreateElement("sn:SerialNumberRequest")
	r.CreateElement("sn:RequestID").SetText(req.ID)
	r.CreateElement("sn:Encoding").SetText(strings.ToUpper(string(req.Encoding)))
	if req.GTIN != "" {
		r.CreateElement("sn:GTIN").SetText(req.GTIN)
	}
	if req.CompanyPrefix != "" {
		r.CreateElement("sn:CompanyPrefix").SetText(req.CompanyPrefix)
	}
	if req.Encoding == EncodingSSCC {
		r.CreateElement("sn:ExtensionDigit").SetText(req.ExtensionDigit)
	}
	r.CreateElement("sn:Quantity").SetText(strconv.Itoa(req.Quantity))
	created := req.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	r.CreateElement("sn:Timestamp").SetText(epcis.FormatTime(created))

	doc.Indent(2)
	return doc.WriteToBytes()
}

// ParseResponse decodes a serial number response. Serials may be listed
// one by one or as a numeric Start/End range.
func ParseResponse(data []byte) (*Response, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &ResponseError{Reason: "response is not XML: " + err.Error(), Body: data}
	}

	if fault := doc.FindElement("//*[local-name()='Fault']"); fault != nil {
		reason := "SOAP fault"
		if s := fault.FindElement(".//*[local-name()='faultstring']"); s != nil {
			reason += ": " + strings.TrimSpace(s.Text())
		}
		return nil, &ResponseError{Reason: reason, Body: data}
	}

	el := doc.FindElement("//*[local-name()='SerialNumberResponse']")
	if el == nil {
		return nil, &ResponseError{Reason: "no SerialNumberResponse element found", Body: data}
	}

	resp := &Response{Raw: data}
	if id := el.FindElement("./*[local-name()='RequestID']"); id != nil {
		resp.RequestID = strings.TrimSpace(id.Text())
	}
	for _, sn := range el.FindElements(".//*[local-name()='SerialNumber']") {
		if v := strings.TrimSpace(sn.Text()); v != "" {
			resp.Serials = append(resp.Serials, v)
		}
	}
	if rng := el.FindElement(".//*[local-name()='Range']"); rng != nil {
		serials, err := expandRange(rng)
		if err != nil {
			return nil, &ResponseError{Reason: err.Error(), Body: data}
		}
		resp.Serials = append(resp.Serials, serials...)
	}
	if len(resp.Serials) == 0 {
		return nil, &ResponseError{Reason: "response carries no serial numbers", Body: data}
	}
	return resp, nil
}

// maxRange bounds how many serials a single range may expand to
const maxRange = 1_000_000

func expandRange(rng *etree.Element) ([]string, error) {
	read := func(name string) (int64, error) {
		el := rng.FindElement("./*[local-name()='" + name + "']")
		if el == nil {
			return 0, fmt.Errorf("range has no %s", name)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(el.Text()), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("range %s is not numeric", name)
		}
		return n, nil
	}
	start, err := read("Start")
	if err != nil {
		return nil, err
	}
	end, err := read("End")
	if err != nil {
		return nil, err
	}
	if start < 0 || end < start || end-start >= maxRange {
		return nil, fmt.Errorf("invalid range %d-%d", start, end)
	}
	out := make([]string, 0, end-start+1)
	for n := start; n <= end; n++ {
		out = append(out, strconv.FormatInt(n, 10))
	}
	return out, nil
}
