// Command waiwaier exports table designs as AppSheet-ready workbooks.
package main

import (
	"context"
	"fmt"
	"os"

	"waiwaier/cmd/waiwaier/internal"
)

func main() {
	if err := internal.Run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
