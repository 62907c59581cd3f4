//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds the demo hull and lists its boards.
func (Run) Inspect() error {
	mg.Deps(Build.Timber)
	fmt.Println("Inspect demo hull...")
	if _, err := executeCmd("bin/timber", withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the damage demo and writes preview.png.
func (Run) Preview() error {
	mg.Deps(Build.Timber)
	fmt.Println("Render preview...")
	if _, err := executeCmd("bin/timber", withArgs("-demo", "300", "-preview", "preview.png"), withStream()); err != nil {
		return err
	}
	return nil
}
