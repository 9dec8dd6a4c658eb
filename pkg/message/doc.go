// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package message builds the declaration submission envelope and classifies
the service response.

# Envelope

	envelope, err := message.BuildEnvelope(&message.SubmitRequest{
	    Filer:       filerToken,
	    Accountant:  tocToken, // nil for a single-actor envelope
	    Declaration: encoded,
	})

The envelope is SOAP 1.1 with the S, wss, at and tns prefixes and is sent as
a single line. A certified accountant adds a second Security header for the
TOC actor; without one the request sets aceitaAlertas.

# Response

	outcome, err := message.ParseResponse(resp)
	if err != nil {
	    // *ProtocolError: not a SOAP submission response
	}
	if !outcome.OK() {
	    // business failure: outcome.Code, outcome.Message
	}

Only codigo "0" is a success. The message is the submission receipt
(dadosSubmissao), the first validation error (erros) or mensagem verbatim.
*/
package message
