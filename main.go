package main

import (
	"context"
	"fmt"
	"os"

	"github.com/secmon-lab/weeklydigest/pkg/cli"
)

func main() {
	if err := cli.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "weeklydigest:", err)
		os.Exit(1)
	}
}
