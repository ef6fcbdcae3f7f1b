package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/rmagee/quartet-integrations-sub000/pkg/epcis"
)

// Built-in template names
const (
	ObjectEventXML      = "epcis/object_event.xml"
	AggregationEventXML = "epcis/aggregation_event.xml"
	TransactionEventXML = "epcis/transaction_event.xml"
	DocumentXML         = "epcis/document.xml"
	DocumentJSON        = "epcis/document.json"
	EventJSON           = "epcis/event.json"
	OptelCommissioning  = "optel/commissioning.xml"
)

// ErrUnknownTemplate is returned when no template has the requested name
var ErrUnknownTemplate = errors.New("unknown template")

//go:embed templates
var builtins embed.FS

// Context is the auxiliary data rendered alongside an event. It is never
// stored on the event itself.
type Context struct {
	DocumentID    string
	Count         int
	Lot           string
	Expiry        string
	Product       string
	UOM           string
	Location      string
	PurchaseOrder string
	CreatedAt     time.Time
	Values        map[string]string

	// Body holds the rendered event fragments when an envelope is rendered
	Body string
}

// Value returns the named free-form value or ""
func (c *Context) Value(name string) string {
	if c == nil {
		return ""
	}
	return c.Values[name]
}

// Renderer renders one event with a named template. ev is nil when an
// envelope is rendered.
type Renderer interface {
	Render(name string, ev epcis.Eventer, c *Context) (string, error)
}

// TemplateRenderer renders text/template templates. It starts with the
// built-in EPCIS templates; vendor templates are added by name. Safe for
// concurrent use.
type TemplateRenderer struct {
	mu   sync.RWMutex
	tmpl *template.Template
}

// NewTemplateRenderer creates a renderer holding the built-in templates
func NewTemplateRenderer() (*TemplateRenderer, error) {
	r := &TemplateRenderer{tmpl: template.New("").Funcs(funcs)}
	sub, err := fs.Sub(builtins, "templates")
	if err != nil {
		return nil, err
	}
	if err := r.LoadFS(sub); err != nil {
		return nil, fmt.Errorf("failed to load built-in templates: %w", err)
	}
	return r, nil
}

// AddTemplate parses text under name, replacing any template of that name
func (r *TemplateRenderer) AddTemplate(name, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.tmpl.New(name).Parse(text); err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return nil
}

// LoadFS adds every regular file of fsys as a template named by its
// slash separated path.
func (r *TemplateRenderer) LoadFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		return r.AddTemplate(p, string(data))
	})
}

// Has reports whether a template is registered under name
func (r *TemplateRenderer) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tmpl.Lookup(name) != nil
}

// Render implements Renderer
func (r *TemplateRenderer) Render(name string, ev epcis.Eventer, c *Context) (string, error) {
	r.mu.RLock()
	t := r.tmpl.Lookup(name)
	r.mu.RUnlock()
	if t == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	if c == nil {
		c = &Context{}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data{Event: ev, Context: c}); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

type data struct {
	Event   epcis.Eventer
	Context *Context
}

var funcs = template.FuncMap{
	"time":   epcis.FormatTime,
	"offset": zoneOffset,
	"xml":    escapeXML,
	"json":   toJSON,
	"local":  localName,
	"parent": parentID,
	"epcs":   epcs,
	"isZero": func(t time.Time) bool { return t.IsZero() },
}

func parentID(ev epcis.Eventer) string {
	switch e := ev.(type) {
	case *epcis.AggregationEvent:
		return e.ParentID
	case *epcis.TransactionEvent:
		return e.ParentID
	}
	return ""
}

// epcs returns the EPC or child EPC list without the parent
func epcs(ev epcis.Eventer) []string {
	out := []string{}
	switch e := ev.(type) {
	case *epcis.ObjectEvent:
		out = append(out, e.EPCs...)
	case *epcis.AggregationEvent:
		out = append(out, e.ChildEPCs...)
	case *epcis.TransactionEvent:
		out = append(out, e.EPCs...)
	}
	return out
}

func zoneOffset(ev epcis.Eventer) string {
	c := ev.Common()
	if c.EventTimeZoneOffset != "" {
		return c.EventTimeZoneOffset
	}
	return epcis.ZoneOffset(c.EventTime)
}

func escapeXML(s string) (string, error) {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return "", err
	}
	return b.String(), nil
}

func toJSON(v any) (string, error) {
	out, err := json.Marshal(v)
	return string(out), err
}

func localName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// DefaultTemplate returns the built-in template for an event kind in the
// format of the given envelope.
func DefaultTemplate(kind epcis.Kind, envelope string) string {
	if path.Ext(envelope) == ".json" {
		return EventJSON
	}
	switch kind {
	case epcis.KindAggregation:
		return AggregationEventXML
	case epcis.KindTransaction:
		return TransactionEventXML
	default:
		return ObjectEventXML
	}
}
