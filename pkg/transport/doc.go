// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package transport posts request documents to vendor endpoints over HTTP(S).

Number request steps use it to talk to external serial number systems:

	client := transport.NewClient(&transport.Config{
	    MinTLSVersion: transport.TLS12,
	    Timeout:       30 * time.Second,
	    Username:      "svc",
	    Password:      os.Getenv("NUMBERING_PASSWORD"),
	})

	response, err := client.Post(ctx, endpoint, request, transport.ContentTypeSOAP11, "urn:requestSerialNumbers")

Requests are not retried. A non-2xx answer is returned as a
*[StatusError] carrying the raw response body.

# References

  - SOAP 1.1 HTTP binding: https://www.w3.org/TR/2000/NOTE-SOAP-20000508/#_Toc478383526
  - TLS 1.2 RFC 5246: https://datatracker.ietf.org/doc/html/rfc5246
*/
package transport
