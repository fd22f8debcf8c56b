// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

// Package main provides build targets for the bakery project using Mage.
//
// Usage:
//
//	mage build             Compile the bakery binary to bin/
//	mage run               Build, seed if empty, and serve the API
//	mage test:all          Run unit and integration tests
//	mage test:unit         Run unit tests only
//	mage test:integration  Run PostgreSQL tests in a container
//	mage lint              Run golangci-lint
//	mage clean             Remove build artifacts
//	mage install           Install bakery to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "bakery"
	binaryDir  = "bin"
	cmdDir     = "./cmd/bakery"
)

func binaryPath() string {
	return filepath.Join(binaryDir, binaryName)
}

// Build compiles the bakery binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", binaryPath(), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), binaryPath())
}

// Run builds the binary, seeds an empty store, and serves the API.
func Run() error {
	mg.Deps(Build)
	// seed exits 1 when the store already has data; that is fine here.
	_ = sh.RunV(binaryPath(), "seed")
	return sh.RunV(binaryPath(), "serve")
}
