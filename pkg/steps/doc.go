// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package steps provides the adapter steps the host rule engine executes.

Every step is built from named string parameters and a set of
collaborators, then executed against the rule context shared by the steps
of one rule:

	deps := steps.Deps{MasterData: store, Entries: store, Logger: logger}
	consolidate, _ := steps.New(steps.NameConsolidate, rules.Parameters{"Vendor": "optel"}, deps)
	render, _ := steps.New(steps.NameRender, nil, deps)
	err := rules.Run(ctx, rc, logger, steps.Classify, consolidate, render)

# Steps

  - [ConsolidateStep] parses the inbound message with a vendor
    consolidation parser and stores events, quantity and shipment data.
  - [ConvertEPCsStep] rewrites vendor identifier shorthand into GS1 URNs.
  - [AutoCommissionStep] commissions identifiers that aggregations
    reference but the entry store does not know.
  - [TemplateOverrideStep] rebinds event templates.
  - [RenderStep] renders all events into one document.
  - [NumberRequestStep] requests serial numbers from a numbering system.

Parameters are read when a step executes, except the extension digit of
a number request which is checked when the step is built. Steps never
retry. [Classify] maps their errors to the class reported to the host.
*/
package steps
