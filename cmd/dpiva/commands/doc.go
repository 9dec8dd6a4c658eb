// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

// Package commands implements the dpiva command line:
//
//	dpiva submit --config dpiva.yaml --target test 2024-01.xml bundle.zip
//	dpiva inspect 2024-01.xml
//	dpiva results --config dpiva.yaml --status fail
package commands
