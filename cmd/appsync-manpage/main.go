package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/appsync/cmd/appsync"
	"github.com/arthur-debert/appsync/internal/version"
)

func main() {
	rootCmd := appsync.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "APPSYNC",
		Section: "1",
		Source:  "appsync " + version.Version,
		Manual:  "appsync manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
