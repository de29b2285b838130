package main

import (
	"os"

	"github.com/JonMunkholm/csvgate/cmd/csvgate/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
