package main

import (
	"github.com/quest4ione/hackmud-cli/cmd"
	"github.com/quest4ione/hackmud-cli/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
