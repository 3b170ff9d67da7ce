package main

import (
	"os"

	"github.com/bianoble/ghmirror/cmd/ghmirror/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
