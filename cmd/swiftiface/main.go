// Command swiftiface reconstructs a declarative Swift interface from a
// Mach-O image's reflective metadata sections.
package main

import (
	"os"

	"github.com/apex/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
