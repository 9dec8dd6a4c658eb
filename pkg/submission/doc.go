// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

/*
Package submission runs the submission pipeline for periodic VAT
declarations.

Each declaration goes through four stages, in order:

	declaration        encode the document (zip, base64 twice)
	envelope           generate the UsernameTokens and build the envelope
	webserviceRequest  POST the envelope to the target
	response           classify the service response

The first failing stage is recorded with its reason and ends the pipeline;
later stages are left out of Result.Stages. A failure never escapes as an
error: Submit always returns a Result.

# Usage

	sub, err := submission.New(submission.Config{
	    Credentials: creds,
	    PublicKey:   pub,
	    Sender:      httpsClient,
	    Logger:      logger,
	})
	if err != nil {
	    return err
	}

	results := sub.SubmitBatch(ctx, transport.TargetTest, items, 4)

Pipelines share only the credential map and the public key, both read-only,
so a batch runs them concurrently.
*/
package submission
