//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the headless demo into bin/anima-hal.
func (Build) Demo() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/anima-hal", "."), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Runs every package test.
func (Test) All() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the tests that need no Vulkan driver.
func (Test) Core() error {
	pkgs := []string{"./engine/core/...", "./engine/containers/...", "./engine/math/...", "./engine/renderer/metadata/..."}
	if _, err := executeCmd("go", withArgs(append([]string{"test"}, pkgs...)...), withStream()); err != nil {
		return err
	}
	return nil
}
