// Command imgurl inspects resized image URLs from the command line: it
// resolves variants, derives originals and audits the gallery for missing
// resized files.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
