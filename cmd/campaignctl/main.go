// Command campaignctl prints campaign comparisons and manages the report cache.
package main

import (
	"os"

	"github.com/odyssey-erp/campaign-insights/cmd/campaignctl/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
