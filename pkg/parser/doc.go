// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package parser streams vendor EPCIS XML into canonical events.

The parser walks the token stream once, forward only. Each ObjectEvent,
AggregationEvent and TransactionEvent element is read as one bounded
subtree, mapped onto an [epcis.Eventer] and handed to the [Handler]
before the next event is read, so memory stays proportional to a single
event rather than the document.

	c := &parser.Collector{}
	p := parser.New(c, parser.Chain(parser.SAPExtension{}, parser.USHealthcare{}), logger)
	messageID, err := p.Parse(ctx, body)

Gzip input is detected and decompressed transparently.

# Extensions

Children of an event that are not part of the EPCIS core (vendor blocks,
GS1 US Healthcare statements) are passed to the configured
[ExtensionElementHandler] as *etree.Element values. Each element carries
its resolved namespace, available through NamespaceURI.

# Errors

Input that is not well formed XML fails with [ErrMalformedXML]; an unknown
action or an unreadable timestamp fails with [ErrInvalidEvent]. Handler
and extension errors abort the parse and are returned unchanged.
*/
package parser
