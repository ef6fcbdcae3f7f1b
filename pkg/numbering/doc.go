// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package numbering requests serial numbers from an external numbering system
over SOAP and encodes them as SGTIN or SSCC URNs.

	client := numbering.NewClient(&numbering.ClientConfig{
		Endpoint:   "https://serials.example.com/ws",
		SOAPAction: "urn:requestSerialNumbers",
	})
	resp, err := client.Request(ctx, &numbering.Request{
		Encoding:       numbering.EncodingSSCC,
		CompanyPrefix:  "0312345",
		ExtensionDigit: "0",
		Quantity:       10,
	})

Responses may list serials individually or as a Start/End range. An
answer without serials, a SOAP fault or a serial outside the configured
[Allocation] range is reported as a *[ResponseError] carrying the raw body.
*/
package numbering
