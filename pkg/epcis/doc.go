// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package epcis holds the canonical event model shared by every vendor
adapter: object, aggregation and transaction events with their business
step, disposition, ILMD, business transactions and source/destination
lists.

Events are plain structs handed between parsers, consolidation and
rendering by pointer. Vendor data is not trusted to be consistent, so the
model does not enforce EPC uniqueness or record time ordering.

	ev := &epcis.ObjectEvent{
	    Event: epcis.Event{
	        Action:  epcis.ActionAdd,
	        BizStep: epcis.BizStepCommissioning,
	    },
	    EPCs: []string{"urn:epc:id:sgtin:0312345.000001.1001"},
	}

Every kind implements [Eventer], which gives uniform access to the common
fields and the referenced identifiers.
*/
package epcis
