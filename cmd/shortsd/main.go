// Command shortsd collects trending short-form videos, ranks them and serves
// the catalog over HTTP.
package main

import (
	"flag"
	"fmt"
	"os"

	"shortsd/internal/di"
	"shortsd/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "configs/config.yml", "Path to the YAML configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "Log to the console at debug level")
	flag.Parse()

	_, cleanup, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "shortsd: %s\n", err)
		os.Exit(1)
	}
	cleanup()
}
