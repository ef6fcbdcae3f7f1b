package parser

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
)

// USHealthcareNS is the GS1 US Healthcare extension namespace
const USHealthcareNS = "http://epcis.gs1us.org/hc/ns"

// ExtensionElementHandler receives event children the parser does not map
// itself. Handlers ignore elements they do not recognise.
type ExtensionElementHandler interface {
	Handle(ev epcis.Eventer, el *etree.Element) error
}

// ExtensionFunc adapts a function to ExtensionElementHandler
type ExtensionFunc func(ev epcis.Eventer, el *etree.Element) error

// Handle calls f
func (f ExtensionFunc) Handle(ev epcis.Eventer, el *etree.Element) error {
	return f(ev, el)
}

// Ignore drops every extension element
var Ignore ExtensionElementHandler = ExtensionFunc(func(epcis.Eventer, *etree.Element) error {
	return nil
})

// Chain offers each element to every handler in order
func Chain(handlers ...ExtensionElementHandler) ExtensionElementHandler {
	return ExtensionFunc(func(ev epcis.Eventer, el *etree.Element) error {
		for _, h := range handlers {
			if err := h.Handle(ev, el); err != nil {
				return err
			}
		}
		return nil
	})
}

// Capture records the text of every unknown leaf element, at any depth,
// as an event extension attribute named after the element.
var Capture ExtensionElementHandler = ExtensionFunc(func(ev epcis.Eventer, el *etree.Element) error {
	captureLeaves(ev.Common(), el, "")
	return nil
})

// SAPExtension maps the SAP object attribute block
//
//	<sap:SAPExtension><objAttributes><LOTNO>..</LOTNO><DATEX>..</DATEX></objAttributes></sap:SAPExtension>
//
// onto the event. Lot, expiry and production dates become ILMD attributes;
// every other value is kept as an extension attribute.
type SAPExtension struct{}

var sapILMD = map[string]string{
	"LOTNO": epcis.ILMDLotNumber,
	"BATCH": epcis.ILMDLotNumber,
	"DATEX": epcis.ILMDExpirationDate,
	"DATMF": epcis.ILMDManufactureDate,
}

// Handle implements ExtensionElementHandler
func (SAPExtension) Handle(ev epcis.Eventer, el *etree.Element) error {
	if el.Tag != "SAPExtension" {
		return nil
	}
	c := ev.Common()
	for _, leaf := range leaves(el) {
		name, value := leaf.Tag, text(leaf)
		if ilmd, ok := sapILMD[strings.ToUpper(name)]; ok {
			if _, exists := c.ILMDValue(ilmd); !exists {
				c.SetILMD(ilmd, value)
			}
			continue
		}
		c.Extensions = append(c.Extensions, epcis.Attribute{Name: name, Value: value})
	}
	return nil
}

// USHealthcare keeps elements in the GS1 US Healthcare namespace (DSCSA
// transaction statements and the like) as extension attributes prefixed
// with "gs1ushc:".
type USHealthcare struct{}

// Handle implements ExtensionElementHandler
func (USHealthcare) Handle(ev epcis.Eventer, el *etree.Element) error {
	if el.NamespaceURI() != USHealthcareNS {
		return nil
	}
	captureLeaves(ev.Common(), el, "gs1ushc:")
	return nil
}

func captureLeaves(c *epcis.Event, el *etree.Element, prefix string) {
	for _, leaf := range leaves(el) {
		c.Extensions = append(c.Extensions, epcis.Attribute{Name: prefix + leaf.Tag, Value: text(leaf)})
	}
}

// leaves returns el itself when it has no child elements, otherwise every
// descendant without children in document order.
func leaves(el *etree.Element) []*etree.Element {
	children := el.ChildElements()
	if len(children) == 0 {
		return []*etree.Element{el}
	}
	var out []*etree.Element
	for _, c := range children {
		out = append(out, leaves(c)...)
	}
	return out
}
