// The main package for the awardfeed executable.
package main

import (
	"github.com/spendwatch/awardfeed/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
