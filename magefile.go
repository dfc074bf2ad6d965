//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "filetranslator"

// Default target when running mage with no arguments.
var Default = Build

// Build compiles the filetranslator binary into ./bin.
func Build() error {
	mg.Deps(Vet)
	return sh.RunV("go", "build", "-o", "bin/"+binary, "./cmd/filetranslator")
}

// Test runs all unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs the binary into GOPATH/bin.
func Install() error {
	return sh.RunV("go", "install", "./cmd/filetranslator")
}

// Clean removes build artifacts.
func Clean() error {
	return sh.Rm("bin")
}
