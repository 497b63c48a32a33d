package main

import (
	"github.com/manzanit0/tourplanner/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
