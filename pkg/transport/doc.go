// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package transport implements the HTTPS transport to the declaration web
service.

Each [Target] (test or production) has its own endpoint URL and TLS
material. When a client certificate is configured it is presented for
mutual TLS:

	client, err := transport.NewHTTPSClient(&transport.HTTPSConfig{
	    MinTLSVersion: transport.TLS12,
	    MaxTLSVersion: transport.TLS13,
	    Timeout:       60 * time.Second,
	    Endpoints: map[transport.Target]*transport.Endpoint{
	        transport.TargetTest: {URL: testURL, Certificates: []tls.Certificate{cert}},
	    },
	})

	resp, err := client.Send(ctx, transport.TargetTest, envelope)

[HTTPSClient.Send] returns a [Response] for any HTTP status: SOAP faults and
validation errors arrive with error statuses and still need to be
classified. Only failures to obtain a response are reported, as a [Fault].
There are no retries; timeouts come from the context and the configured
client timeout.
*/
package transport
