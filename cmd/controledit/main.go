package main

import (
	"github.com/pgclone/controledit/cmd/controledit/cmd"
)

func main() {
	cmd.Execute()
}
