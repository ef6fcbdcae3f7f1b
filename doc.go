// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package integrations adapts vendor serialization exports to GS1 EPCIS for
pharmaceutical track and trace.

# Overview

Packaging line vendors export commissioning, aggregation and shipping
data as EPCIS documents in their own dialects: identifiers in vendor
shorthand, one commissioning event per item, aggregation events timed
before the items they pack. The adapters in this module parse those
exports, consolidate and correct them, convert identifiers into
compliant GS1 URNs, and render the result as a standard EPCIS 1.2
document. They also request serial numbers from external numbering
systems over SOAP.

The adapters run as steps of a host rule engine. Each step reads and
writes a shared rule context.

# Specifications Implemented

  - GS1 EPCIS 1.2: https://ref.gs1.org/standards/epcis/1.2.0/
  - GS1 Core Business Vocabulary 1.2: https://ref.gs1.org/standards/cbv/1.2.0/
  - GS1 EPC Tag Data Standard (SGTIN-96 and SSCC-96 pure identity URNs)
  - GS1 General Specifications (element strings and check digits)

# Package Structure

	pkg/epcis       - Canonical EPCIS event model and CBV vocabulary
	pkg/gs1         - SGTIN and SSCC encoding, barcode parsing, company prefix resolution
	pkg/compression - Transparent gzip handling of vendor payloads
	pkg/parser      - Streaming EPCIS parser with vendor extension hooks
	pkg/consolidate - Vendor consolidation parsers (Optel, TraceLink/Traxeed)
	pkg/render      - Template based EPCIS XML and JSON rendering
	pkg/numbering   - SOAP serial number requests and allocation
	pkg/transport   - HTTPS client for vendor endpoints
	pkg/rules       - Rule context, step parameters and step errors
	pkg/steps       - Adapter steps executed by the host rule engine

# Quick Start

To consolidate an Optel export and render it as EPCIS XML:

	import (
	    "github.com/rmagee/quartet-integrations-sub000/pkg/rules"
	    "github.com/rmagee/quartet-integrations-sub000/pkg/steps"
	)

	rc := rules.NewContext()
	rc.Set(rules.KeyMessage, export)

	deps := steps.Deps{MasterData: masterData, Logger: logger}
	consolidate, _ := steps.New(steps.NameConsolidate, rules.Parameters{"Vendor": "optel"}, deps)
	convert, _ := steps.New(steps.NameConvertEPCs, nil, deps)
	render, _ := steps.New(steps.NameRender, nil, deps)

	if err := rules.Run(ctx, rc, logger, steps.Classify, consolidate, convert, render); err != nil {
	    return err
	}
	document := rules.ValueOr[string](rc, rules.KeyOutput)

A complete program that runs a configured rule over an export file is in
examples/consolidate.

# References

  - GS1 US Healthcare EPCIS guideline: https://www.gs1us.org/industries/healthcare
  - DSCSA: https://www.fda.gov/drugs/drug-supply-chain-integrity/drug-supply-chain-security-act-dscsa

# License

BSD-2-Clause License
*/
package integrations
