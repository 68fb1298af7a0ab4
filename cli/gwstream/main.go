package main

import (
	"os"

	gwstreamcmder "github.com/papercomputeco/gwstream/cmd/gwstream"
)

func main() {
	cmd := gwstreamcmder.NewGwstreamCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
