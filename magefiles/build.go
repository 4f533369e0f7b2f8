//go:build mage

// Package main provides build targets for buzjet using Mage.
//
// Usage:
//
//	mage build      Compile the buzjet binary to bin/
//	mage test:all   Run all tests
//	mage test:race  Run all tests with the race detector
//	mage test:cover Write coverage.out and print per-function coverage
//	mage lint       Run golangci-lint
//	mage demo       Build, then initialize and seed a throwaway catalog
//	mage clean      Remove build artifacts
//	mage install    Install buzjet to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "buzjet"
	binaryDir  = "bin"
	cmdDir     = "./cmd/buzjet"
	demoDir    = ".buzjet-demo"
)

// Build compiles the buzjet binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts and the demo catalog.
func Clean() error {
	for _, dir := range []string{binaryDir, demoDir} {
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
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
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Demo initializes a seeded catalog under .buzjet-demo and lists its hotels.
func Demo() error {
	mg.Deps(Build)
	bin := filepath.Join(binaryDir, binaryName)
	dirs := []string{
		"--config-dir", filepath.Join(demoDir, "config"),
		"--data-dir", filepath.Join(demoDir, "data"),
	}
	if err := sh.RunV(bin, append(dirs, "init", "--seed")...); err != nil {
		return err
	}
	return sh.RunV(bin, append(dirs, "hotel", "list")...)
}
