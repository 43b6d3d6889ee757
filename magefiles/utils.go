//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/sh"
)

const testbedBinary = "bin/testbed"

// goRun runs the go tool with its output on the console.
func goRun(args ...string) error {
	fmt.Printf("Executing: go %s\n", strings.Join(args, " "))
	if err := sh.RunV("go", args...); err != nil {
		return fmt.Errorf("go %s: %w", args[0], err)
	}
	return nil
}

func goTidy() error {
	return goRun("mod", "tidy")
}

// goTest runs the tests of pkgs. The race detector needs cgo.
func goTest(race bool, pkgs ...string) error {
	args := []string{"test"}
	env := map[string]string{}
	if race {
		args = append(args, "-race")
		env["CGO_ENABLED"] = "1"
	}
	args = append(args, pkgs...)
	fmt.Printf("Executing: go %s\n", strings.Join(args, " "))
	return sh.RunWithV(env, "go", args...)
}

// runTestbed starts the binary left by Build.Testbed with the given flags.
func runTestbed(args ...string) error {
	bin := filepath.FromSlash(testbedBinary)
	if _, err := os.Stat(bin); err != nil {
		return fmt.Errorf("testbed is not built: %w", err)
	}
	return sh.RunV(bin, args...)
}
