// Command evalctl invokes Databricks chat providers from the command line.
//
// Usage:
//
//	# Send a prompt to a model
//	evalctl invoke --provider databricks:databricks-dbrx-instruct "What is 2+2?"
//
//	# Use a config file and substitute template variables into tools
//	evalctl invoke --config evalkit.yaml --provider databricks:my-endpoint --var city=Paris "Weather?"
//
//	# List catalog models and their prices
//	evalctl models
//
//	# Check a config file
//	evalctl config validate --config evalkit.yaml
//
// Configuration is read from --config, EVALKIT_CONFIG, ./evalkit.yaml or
// /etc/evalkit/config.yaml. Credentials come from DATABRICKS_TOKEN unless
// set per provider.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
