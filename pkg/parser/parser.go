package parser

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/rmagee/quartet-integrations-sub000/pkg/compression"
	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
)

var (
	// ErrMalformedXML is returned when the input is not well formed XML
	ErrMalformedXML = errors.New("malformed XML")
	// ErrInvalidEvent is returned when an event carries an unusable value
	ErrInvalidEvent = errors.New("invalid EPCIS event")
)

// Handler receives canonical events in document order
type Handler interface {
	OnObjectEvent(ctx context.Context, ev *epcis.ObjectEvent) error
	OnAggregationEvent(ctx context.Context, ev *epcis.AggregationEvent) error
	OnTransactionEvent(ctx context.Context, ev *epcis.TransactionEvent) error
}

// Parser streams vendor EPCIS XML and hands every event to Handler. Event
// elements are recognised at any depth and in any namespace, so SOAP and
// vendor wrappers need no special handling. Children the parser does not
// know go to Extensions.
type Parser struct {
	Handler    Handler
	Extensions ExtensionElementHandler
	Logger     *slog.Logger
}

// New creates a parser for h. A nil ext ignores unknown elements.
func New(h Handler, ext ExtensionElementHandler, logger *slog.Logger) *Parser {
	return &Parser{Handler: h, Extensions: ext, Logger: logger}
}

// Parse reads r to the end. It returns the message identifier taken from
// the SBDH InstanceIdentifier, or a generated UUID when the document has
// none. The first handler error aborts the parse and is returned as is.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (string, error) {
	if p.Handler == nil {
		return "", errors.New("parser has no handler")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	in, err := compression.NewReader(r)
	if err != nil {
		return "", err
	}
	dec := xml.NewDecoder(in)
	dec.Strict = true

	var (
		messageID string
		sawRoot   bool
		counts    = map[epcis.Kind]int{}
	)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true

		switch start.Name.Local {
		case "InstanceIdentifier":
			var id string
			if err := dec.DecodeElement(&id, &start); err != nil {
				return "", fmt.Errorf("%w: %v", ErrMalformedXML, err)
			}
			if messageID == "" {
				messageID = strings.TrimSpace(id)
			}
		case string(epcis.KindObject), string(epcis.KindAggregation), string(epcis.KindTransaction):
			el, err := readElement(dec, start)
			if err != nil {
				return "", fmt.Errorf("%w: %v", ErrMalformedXML, err)
			}
			kind := epcis.Kind(start.Name.Local)
			if err := p.dispatch(ctx, kind, el); err != nil {
				return "", err
			}
			counts[kind]++
		}
	}
	if !sawRoot {
		return "", fmt.Errorf("%w: document has no root element", ErrMalformedXML)
	}
	if messageID == "" {
		messageID = uuid.New().String()
	}

	logger.Debug("parsed EPCIS message",
		slog.String("message_id", messageID),
		slog.Int("object_events", counts[epcis.KindObject]),
		slog.Int("aggregation_events", counts[epcis.KindAggregation]),
		slog.Int("transaction_events", counts[epcis.KindTransaction]))

	return messageID, nil
}

func (p *Parser) dispatch(ctx context.Context, kind epcis.Kind, el *etree.Element) error {
	switch kind {
	case epcis.KindObject:
		ev := &epcis.ObjectEvent{}
		if err := p.populate(ev, el); err != nil {
			return err
		}
		return p.Handler.OnObjectEvent(ctx, ev)
	case epcis.KindAggregation:
		ev := &epcis.AggregationEvent{}
		if err := p.populate(ev, el); err != nil {
			return err
		}
		return p.Handler.OnAggregationEvent(ctx, ev)
	default:
		ev := &epcis.TransactionEvent{}
		if err := p.populate(ev, el); err != nil {
			return err
		}
		return p.Handler.OnTransactionEvent(ctx, ev)
	}
}

func (p *Parser) populate(ev epcis.Eventer, el *etree.Element) error {
	for _, child := range el.ChildElements() {
		if err := p.field(ev, child); err != nil {
			return err
		}
	}
	return nil
}

// field maps one child of an event element onto ev
func (p *Parser) field(ev epcis.Eventer, el *etree.Element) error {
	c := ev.Common()
	switch el.Tag {
	case "action":
		a, err := epcis.ParseAction(text(el))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		c.Action = a
	case "epcList":
		epcs := childTexts(el, "epc")
		switch e := ev.(type) {
		case *epcis.ObjectEvent:
			e.EPCs = append(e.EPCs, epcs...)
		case *epcis.TransactionEvent:
			e.EPCs = append(e.EPCs, epcs...)
		case *epcis.AggregationEvent:
			e.ChildEPCs = append(e.ChildEPCs, epcs...)
		}
	case "childEPCs":
		epcs := childTexts(el, "epc")
		switch e := ev.(type) {
		case *epcis.AggregationEvent:
			e.ChildEPCs = append(e.ChildEPCs, epcs...)
		case *epcis.ObjectEvent:
			e.EPCs = append(e.EPCs, epcs...)
		case *epcis.TransactionEvent:
			e.EPCs = append(e.EPCs, epcs...)
		}
	case "parentID":
		switch e := ev.(type) {
		case *epcis.AggregationEvent:
			e.ParentID = text(el)
		case *epcis.TransactionEvent:
			e.ParentID = text(el)
		default:
			return p.extension(ev, el)
		}
	case "bizStep":
		c.BizStep = text(el)
	case "disposition":
		c.Disposition = text(el)
	case "readPoint":
		c.ReadPoint = childText(el, "id")
	case "bizLocation":
		c.BizLocation = childText(el, "id")
	case "eventTime", "recordTime":
		ts, err := epcis.ParseTime(text(el))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidEvent, el.Tag, err)
		}
		if el.Tag == "eventTime" {
			c.EventTime = ts
		} else {
			c.RecordTime = ts
		}
	case "eventTimeZoneOffset":
		c.EventTimeZoneOffset = text(el)
	case "bizTransactionList":
		for _, bt := range el.SelectElements("bizTransaction") {
			c.BizTransactions = append(c.BizTransactions, epcis.BizTransaction{
				Type:  bt.SelectAttrValue("type", ""),
				Value: text(bt),
			})
		}
	case "sourceList":
		c.Sources = append(c.Sources, sourceDests(el, "source")...)
	case "destinationList":
		c.Destinations = append(c.Destinations, sourceDests(el, "destination")...)
	case "ilmd":
		for _, attr := range el.ChildElements() {
			if len(attr.ChildElements()) > 0 {
				if err := p.extension(ev, attr); err != nil {
					return err
				}
				continue
			}
			c.ILMD = append(c.ILMD, epcis.Attribute{Name: attr.Tag, Value: text(attr)})
		}
	case "extension", "baseExtension":
		return p.populate(ev, el)
	default:
		return p.extension(ev, el)
	}
	return nil
}

func (p *Parser) extension(ev epcis.Eventer, el *etree.Element) error {
	if p.Extensions == nil {
		return nil
	}
	return p.Extensions.Handle(ev, el)
}

// readElement consumes the subtree opened by start and returns it as an
// etree element. Every element carries its resolved namespace in an xmlns
// attribute so that NamespaceURI works without the document's prefixes.
func readElement(dec *xml.Decoder, start xml.StartElement) (*etree.Element, error) {
	root := newElement(start)
	stack := []*etree.Element{root}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, err
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			el := newElement(t)
			top.AddChild(el)
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return root, nil
			}
		case xml.CharData:
			if s := string(t); strings.TrimSpace(s) != "" {
				top.SetText(top.Text() + s)
			}
		}
	}
}

func newElement(start xml.StartElement) *etree.Element {
	el := etree.NewElement(start.Name.Local)
	el.CreateAttr("xmlns", start.Name.Space)
	for _, a := range start.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		el.CreateAttr(a.Name.Local, a.Value)
	}
	return el
}

func text(el *etree.Element) string {
	return strings.TrimSpace(el.Text())
}

func childText(el *etree.Element, tag string) string {
	if c := el.SelectElement(tag); c != nil {
		return text(c)
	}
	return ""
}

func childTexts(el *etree.Element, tag string) []string {
	var out []string
	for _, c := range el.SelectElements(tag) {
		if v := text(c); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func sourceDests(el *etree.Element, tag string) []epcis.SourceDest {
	var out []epcis.SourceDest
	for _, c := range el.SelectElements(tag) {
		out = append(out, epcis.SourceDest{Type: c.SelectAttrValue("type", ""), ID: text(c)})
	}
	return out
}
