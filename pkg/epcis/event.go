package epcis

import (
	"fmt"
	"strings"
	"time"
)

// Action is the EPCIS event action
type Action string

const (
	ActionAdd     Action = "ADD"
	ActionObserve Action = "OBSERVE"
	ActionDelete  Action = "DELETE"
)

// ParseAction validates an action string
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActionAdd, ActionObserve, ActionDelete:
		return a, nil
	}
	return "", fmt.Errorf("unknown EPCIS action %q", s)
}

// Kind names the event variant
type Kind string

const (
	KindObject      Kind = "ObjectEvent"
	KindAggregation Kind = "AggregationEvent"
	KindTransaction Kind = "TransactionEvent"
)

// Attribute is an ordered name/value pair (ILMD, vendor extensions)
type Attribute struct {
	Name  string
	Value string
}

// BizTransaction is a business transaction reference
type BizTransaction struct {
	Type  string
	Value string
}

// SourceDest is an entry of a source or destination list
type SourceDest struct {
	Type string
	ID   string
}

// Event holds the fields shared by every event kind
type Event struct {
	Action              Action
	BizStep             string
	Disposition         string
	ReadPoint           string
	BizLocation         string
	EventTime           time.Time
	RecordTime          time.Time // zero when the sender omitted it
	EventTimeZoneOffset string
	ILMD                []Attribute
	BizTransactions     []BizTransaction
	Sources             []SourceDest
	Destinations        []SourceDest
	Extensions          []Attribute

	// Template is the rendering template bound to this event. Adapters may
	// rebind it after parsing.
	Template string
}

// ILMDValue returns the value of the first ILMD attribute with the given
// name. Namespace prefixes on stored names are ignored.
func (e *Event) ILMDValue(name string) (string, bool) {
	return lookup(e.ILMD, name)
}

// ExtensionValue returns the value of the first extension attribute with
// the given name.
func (e *Event) ExtensionValue(name string) (string, bool) {
	return lookup(e.Extensions, name)
}

// SetILMD replaces the named ILMD attribute or appends it
func (e *Event) SetILMD(name, value string) {
	for i := range e.ILMD {
		if localName(e.ILMD[i].Name) == localName(name) {
			e.ILMD[i].Value = value
			return
		}
	}
	e.ILMD = append(e.ILMD, Attribute{Name: name, Value: value})
}

// BizTransactionValue returns the first business transaction whose type is
// typ or ends with ":"+typ, so both "po" and the full CBV URN match.
func (e *Event) BizTransactionValue(typ string) string {
	for _, bt := range e.BizTransactions {
		if bt.Type == typ || strings.HasSuffix(bt.Type, ":"+typ) {
			return bt.Value
		}
	}
	return ""
}

func (e Event) clone() Event {
	c := e
	c.ILMD = append([]Attribute(nil), e.ILMD...)
	c.BizTransactions = append([]BizTransaction(nil), e.BizTransactions...)
	c.Sources = append([]SourceDest(nil), e.Sources...)
	c.Destinations = append([]SourceDest(nil), e.Destinations...)
	c.Extensions = append([]Attribute(nil), e.Extensions...)
	return c
}

func lookup(attrs []Attribute, name string) (string, bool) {
	want := localName(name)
	for _, a := range attrs {
		if localName(a.Name) == want {
			return a.Value, true
		}
	}
	return "", false
}

func localName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Eventer is implemented by every canonical event kind
type Eventer interface {
	Kind() Kind
	Common() *Event
	// Identifiers lists every EPC the event references, parent first
	Identifiers() []string
}

// ObjectEvent observes, commissions or decommissions a list of EPCs
type ObjectEvent struct {
	Event
	EPCs []string
}

func (e *ObjectEvent) Kind() Kind            { return KindObject }
func (e *ObjectEvent) Common() *Event        { return &e.Event }
func (e *ObjectEvent) Identifiers() []string { return append([]string(nil), e.EPCs...) }

// Clone returns a deep copy
func (e *ObjectEvent) Clone() *ObjectEvent {
	return &ObjectEvent{Event: e.Event.clone(), EPCs: append([]string(nil), e.EPCs...)}
}

// RemoveEPC drops every occurrence of epc from the EPC list
func (e *ObjectEvent) RemoveEPC(epc string) bool {
	var removed bool
	e.EPCs, removed = remove(e.EPCs, epc)
	return removed
}

// AggregationEvent packs children into (or out of) a parent
type AggregationEvent struct {
	Event
	ParentID  string
	ChildEPCs []string
}

func (e *AggregationEvent) Kind() Kind     { return KindAggregation }
func (e *AggregationEvent) Common() *Event { return &e.Event }
func (e *AggregationEvent) Identifiers() []string {
	return withParent(e.ParentID, e.ChildEPCs)
}

// Clone returns a deep copy
func (e *AggregationEvent) Clone() *AggregationEvent {
	return &AggregationEvent{Event: e.Event.clone(), ParentID: e.ParentID, ChildEPCs: append([]string(nil), e.ChildEPCs...)}
}

// RemoveChild drops every occurrence of epc from the child list and
// reports whether anything was removed.
func (e *AggregationEvent) RemoveChild(epc string) bool {
	var removed bool
	e.ChildEPCs, removed = remove(e.ChildEPCs, epc)
	return removed
}

// TransactionEvent associates EPCs with business transactions
type TransactionEvent struct {
	Event
	ParentID string
	EPCs     []string
}

func (e *TransactionEvent) Kind() Kind     { return KindTransaction }
func (e *TransactionEvent) Common() *Event { return &e.Event }
func (e *TransactionEvent) Identifiers() []string {
	return withParent(e.ParentID, e.EPCs)
}

// Clone returns a deep copy
func (e *TransactionEvent) Clone() *TransactionEvent {
	return &TransactionEvent{Event: e.Event.clone(), ParentID: e.ParentID, EPCs: append([]string(nil), e.EPCs...)}
}

func withParent(parent string, children []string) []string {
	out := make([]string, 0, len(children)+1)
	if parent != "" {
		out = append(out, parent)
	}
	return append(out, children...)
}

func remove(list []string, epc string) ([]string, bool) {
	out := list[:0]
	removed := false
	for _, v := range list {
		if v == epc {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}
