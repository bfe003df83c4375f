// Command ogimage signs and submits image requests from the command line.
//
//	ogimage url --title "Hello" --template blog
//	ogimage create --title "Hello" --json
//	ogimage verify <token>
//
// Secret and issuer come from --secret/--issuer, OGIMAGE_SECRET/OGIMAGE_ISSUER,
// or a .ogimage.yaml file in the current or home directory.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
