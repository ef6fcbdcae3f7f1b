package render

import (
	"path"
	"strings"

	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
)

// Bound pairs an event with the template and context it renders with. An
// empty Template falls back to the event's own binding, then to the kind
// default. A nil Context uses the document context.
type Bound struct {
	Event    epcis.Eventer
	Template string
	Context  *Context
}

// Bind wraps events without explicit templates or contexts
func Bind(events ...epcis.Eventer) []Bound {
	out := make([]Bound, 0, len(events))
	for _, ev := range events {
		out = append(out, Bound{Event: ev})
	}
	return out
}

// ForEvent derives the context one event renders with from the document
// context: Count becomes the number of EPCs the event carries (the parent
// excluded), Location the event's own location when it has one, and the
// event's ILMD and extension attributes are added to Values by local name.
func (c *Context) ForEvent(ev epcis.Eventer) *Context {
	out := Context{}
	if c != nil {
		out = *c
	}
	out.Values = make(map[string]string, len(out.Values))
	if c != nil {
		for k, v := range c.Values {
			out.Values[k] = v
		}
	}

	common := ev.Common()
	out.Count = len(epcs(ev))
	if common.BizLocation != "" {
		out.Location = common.BizLocation
	} else if common.ReadPoint != "" {
		out.Location = common.ReadPoint
	}
	for _, a := range common.ILMD {
		out.Values[localName(a.Name)] = a.Value
	}
	for _, a := range common.Extensions {
		out.Values[localName(a.Name)] = a.Value
	}
	return &out
}

// ContentType returns the media type of documents rendered with the named
// template
func ContentType(name string) string {
	if path.Ext(name) == ".json" {
		return "application/json"
	}
	return "application/xml"
}

// Document renders every bound event and places the fragments inside the
// envelope template, which receives them as .Context.Body. The rendered
// output is not validated.
func Document(r Renderer, envelope string, events []Bound, c *Context) (string, error) {
	if c == nil {
		c = &Context{}
	}
	sep := "\n"
	if path.Ext(envelope) == ".json" {
		sep = ",\n"
	}

	fragments := make([]string, 0, len(events))
	for _, b := range events {
		name := b.Template
		if name == "" {
			name = b.Event.Common().Template
		}
		if name == "" {
			name = DefaultTemplate(b.Event.Kind(), envelope)
		}
		ctx := b.Context
		if ctx == nil {
			ctx = c
		}
		out, err := r.Render(name, b.Event, ctx)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, strings.TrimSpace(out))
	}

	doc := *c
	doc.Body = strings.Join(fragments, sep)
	return r.Render(envelope, nil, &doc)
}

// Override binds template to every event, or only to events of the given
// kinds when any are listed.
func Override(events []epcis.Eventer, template string, kinds ...epcis.Kind) int {
	n := 0
	for _, ev := range events {
		if len(kinds) > 0 && !hasKind(kinds, ev.Kind()) {
			continue
		}
		ev.Common().Template = template
		n++
	}
	return n
}

func hasKind(kinds []epcis.Kind, k epcis.Kind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}
