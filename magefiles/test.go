//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every package test, with the debug assertions enabled.
func (Test) All() error {
	if _, err := executeCmd("go", withArgs("test", "-tags", "debug", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the wood package tests only.
func (Test) Wood() error {
	if _, err := executeCmd("go", withArgs("test", "-tags", "debug", "-v", "."), withDir("engine/wood"), withStream()); err != nil {
		return err
	}
	return nil
}
