// Command searchctl inspects the listing search from the command line:
// compile filter expressions, run queries and prepare a local index.
package main

import (
	"os"

	"github.com/deal-drive/site/config"
	"github.com/deal-drive/site/observability"
)

func main() {
	observability.InitLogger("searchctl", "development")
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig is replaced in tests.
var loadConfig = config.Load
