//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed on the headless renderer for a few hundred frames.
func (Run) Testbed() error {
	mg.Deps(Build.Testbed)
	fmt.Println("Run testbed...")
	return runTestbed("-frames", "300", "-debug")
}

// Runs the testbed with a config file, reloading it on every save.
func (Run) Watch(path string) error {
	mg.Deps(Build.Testbed)
	return runTestbed("-config", path, "-frames", "0")
}
