// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package consolidate rebuilds pack level commissioning events from vendor
streams that send one ADD event per serialized unit.

# Pack levels

Each SGTIN is assigned a pack level from its indicator digit using the
dialect's [Config.PackLevels]; SSCCs are always pallets. The first EPC of a
level starts one commissioning event seeded from the triggering vendor
event, and every later EPC of that level is appended to it, so N vendor
events produce one event per level:

	p := consolidate.New(consolidate.Optel())
	messageID, err := p.Parse(ctx, body)
	for _, ev := range p.ObjectEvents() {
	    // one ADD event per pack level
	}

# Aggregations

Aggregation event times are moved to the later of the vendor time and the
latest object event time, plus [Config.Skew], so they always follow the
commissioning events they depend on.

Pallets (aggregations with an SSCC parent) form a working set. A DELETE
against a tracked pallet is applied rather than emitted: children that
were on the pallet are taken out of their commissioning event and moved to
a partial carton commissioning event, timed one skew after the first object
event.

# Shipment metadata

Lot, expiry, product, unit of measure and purchase order are taken from
the first event carrying each value. Missing values are left empty.
*/
package consolidate
