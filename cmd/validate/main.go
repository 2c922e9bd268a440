// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// validate is a CLI tool to validate documentation-site YAML configuration
// files.
//
// Usage:
//
//	validate -f pydocmd.yml
//	validate --file pydocmd.yml
//
// Exit codes:
//   - 0: Configuration is valid
//   - 1: Configuration is invalid (parse or validation error)
//   - 2: Usage error (missing required flag)
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ManuGH/docsmith/internal/config"
	"github.com/ManuGH/docsmith/internal/validate"
)

var Version = "dev"

func main() {
	var file string
	var showVersion bool

	flag.StringVar(&file, "file", "", "path to YAML configuration file")
	flag.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(Version)
		os.Exit(0)
	}

	if file == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  validate -f pydocmd.yml")
		fmt.Fprintln(os.Stderr, "  validate --file pydocmd.yml")
		os.Exit(2)
	}

	// Load configuration (uses strict YAML parsing and schema validation)
	loader := config.NewLoader(file, Version)
	if _, err := loader.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n", file)

		var verr validate.ValidationError
		if errors.As(err, &verr) {
			for _, e := range verr.Errors() {
				fmt.Fprintf(os.Stderr, "  - %v\n", e)
			}
		} else {
			fmt.Fprintf(os.Stderr, "  %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("✓ %s is valid\n", file)
}
