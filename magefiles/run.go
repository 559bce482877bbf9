//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds the demo and runs it once against the first Vulkan device.
func (Run) Demo() error {
	mg.Deps(Build.Demo)
	fmt.Println("Run demo...")
	if _, err := executeCmd("bin/anima-hal", withArgs("-config", "anima-hal.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the demo until interrupted, reloading the log level on config edits.
func (Run) Watch() error {
	mg.Deps(Build.Demo)
	if _, err := executeCmd("bin/anima-hal", withArgs("-config", "anima-hal.toml", "-watch"), withStream()); err != nil {
		return err
	}
	return nil
}
