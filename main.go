package main

import (
	"github.com/radiofrance/cargo2junit/cmd"
)

func main() {
	cmd.Execute()
}
