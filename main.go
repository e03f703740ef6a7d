package main

import (
	"github.com/hdlforge/xbt/cmd"
)

func main() {
	cmd.Execute()
}
