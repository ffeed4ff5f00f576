// Command reqcraft builds and serves APIs described by .rqc files.
package main

import (
	"fmt"
	"os"

	"reqcraft/internal/cli"
)

func main() {
	err := cli.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(cli.ExitCode(err))
}
