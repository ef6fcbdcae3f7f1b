// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package render turns canonical events into vendor documents.

A [Renderer] renders one event with a named template and a [Context]. The
context carries document level values (lot, expiry, count, location) and
is passed alongside the event, never stored on it.

[TemplateRenderer] uses text/template and ships EPCIS 1.2 XML and EPCIS
2.0 JSON templates:

	r, err := render.NewTemplateRenderer()
	out, err := render.Document(r, render.DocumentXML, render.Bind(events...), &render.Context{
	    DocumentID: messageID,
	    CreatedAt:  time.Now(),
	})

Vendor templates are added with AddTemplate or LoadFS. Every event may be
rebound to another template after parsing with [Override]. Rendered output
is not validated against any schema.

# Template functions

  - time: EPCIS timestamp in UTC
  - offset: the event's time zone offset
  - xml, json: escape a value for the target format
  - local: strip a namespace prefix from a name
  - parent, epcs: parent and EPC list of any event kind
  - isZero: report a zero time
*/
package render
