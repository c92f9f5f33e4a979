// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Groundlink - ground station telemetry link
//
// A CLI tool for ingesting framed satellite telemetry and dispatching
// framed commands.

package main

import (
	"os"

	"github.com/negevsat/groundlink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
