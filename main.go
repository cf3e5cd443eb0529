package main

import (
	"github.com/julesintime/forge-bootstrapper/cmd"
)

func main() {
	cmd.Execute()
}
