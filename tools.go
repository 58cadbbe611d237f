// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

//go:build tools

// Package main pins tool dependencies to go.mod.
package main

import (
	// ginkgo CLI, used to run the integration suite under test/integration.
	_ "github.com/onsi/ginkgo/v2/ginkgo"
)
