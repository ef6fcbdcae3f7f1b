// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package rules is the contract between adapter steps and the host rule
engine.

The host builds each [Step] from named string [Parameters], then executes
the steps of a rule one at a time against a shared [Context]. Steps read
what earlier steps stored under well-known keys and store their own
results for the next step:

	rc := rules.NewContext()
	rc.Set(rules.KeyMessage, body)
	err := rules.Run(ctx, rc, logger, steps.Classify, consolidate, render)

A failing step is reported as a *[StepError] carrying the step name and an
[ErrorClass]. Steps never retry; retrying is the host's decision.

Parameters are validated when read. A missing required parameter fails
with [ErrExpectedTaskParameter] naming the parameter.
*/
package rules
