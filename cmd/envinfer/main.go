// # cmd/envinfer/main.go
package main

import (
	"os"

	"envinfer/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
