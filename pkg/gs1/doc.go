// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package gs1 converts between vendor barcode and URN encodings and canonical
GS1 identifiers.

# Identifiers

Two pure identity forms are handled:

	urn:epc:id:sgtin:{company prefix}.{indicator}{item reference}.{serial}
	urn:epc:id:sscc:{company prefix}.{extension}{serial reference}

The company prefix and item reference together always hold 12 digits (a
GTIN-14 minus its indicator and check digit). An SSCC holds 17 digits
before its check digit.

	urn := gs1.EncodeSGTIN("0312345", "0", "00001", "1001")
	sscc, err := gs1.EncodeSSCC("0", "0312345", "42") // 003123450000000424

# Company Prefix Resolution

Vendors frequently send urn:epc:id:sgtin:{gtin14}.{serial}, which cannot
be split without knowing the company prefix length. A [Codec] resolves
the length from master data and caches it for its own lifetime:

	codec := gs1.NewCodec(masterData, logger)
	urn, err := codec.ConvertVendorGTINSerial(ctx, "urn:epc:id:sgtin:10312345000012.1001")

# Errors

All codec failures are *[Error] values whose Kind selects one of the
sentinel errors, so callers can branch with errors.Is:

	if errors.Is(err, gs1.ErrTradeItemConfiguration) {
	    // master data must be fixed before the message can be processed
	}
*/
package gs1
