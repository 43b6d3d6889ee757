//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies the module and builds the testbed binary into bin/.
func (Build) Testbed() error {
	if err := goTidy(); err != nil {
		return err
	}
	return goRun("build", "-o", testbedBinary, ".")
}

type Test mg.Namespace

// Runs every package test.
func (Test) All() error {
	return goTest(false, "./...")
}

// Runs the tests with the race detector, which covers the job system workers.
func (Test) Race() error {
	return goTest(true, "./engine/...")
}

type Lint mg.Namespace

func (Lint) Vet() error {
	return goRun("vet", "./...")
}
