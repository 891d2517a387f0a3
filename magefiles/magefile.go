//go:build mage

// Package main provides build targets for the sleipnir project using Mage.
//
// Usage:
//
//	mage build    Compile sleipnir binary to bin/
//	mage test     Run all tests with the race detector
//	mage cover    Run tests with coverage and print the summary
//	mage lint     Run golangci-lint
//	mage clean    Remove build artifacts
//	mage install  Install sleipnir to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "sleipnir"
	binaryDir  = "bin"
	cmdDir     = "./cmd/sleipnir"
)

// Build compiles the sleipnir binary to bin/ with version metadata.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	commit, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		commit = "dev"
	}
	ldflags := fmt.Sprintf("-X main.commit=%s -X main.buildTime=%s",
		commit, time.Now().UTC().Format("20060102-150405"))
	return sh.RunV("go", "build", "-v", "-ldflags", ldflags,
		"-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Cover runs tests with coverage and prints the per-function summary.
func Cover() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := os.Remove("coverage.out"); err != nil && !os.IsNotExist(err) {
		return err
	}
	return sh.RunV("go", "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output("go", "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
