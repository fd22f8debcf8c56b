// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// integrationTag selects the tests that need a container runtime.
const integrationTag = "integration"

// Test groups test targets (all, unit, integration).
type Test mg.Namespace

// All runs unit tests, then integration tests.
func (Test) All() error {
	mg.SerialDeps(Test.Unit, Test.Integration)
	return nil
}

// Unit runs the tests that need nothing beyond the Go toolchain.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Integration runs the PostgreSQL backend tests against a container
// started by testcontainers. Docker or Podman must be available.
func (Test) Integration() error {
	return sh.RunV(binGo, "test", "-v", "-tags", integrationTag, "./internal/postgres/...")
}
