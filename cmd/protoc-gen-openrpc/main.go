// protoc-gen-openrpc is a protoc plugin that writes one OpenRPC document per
// proto file.
//
//	protoc --openrpc_out=. --openrpc_opt=title=Users API,pretty api/users.proto
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/platinummonkey/proto2openrpc/pkg/cli"
	"github.com/platinummonkey/proto2openrpc/pkg/observability"
	"github.com/platinummonkey/proto2openrpc/pkg/plugin"
)

func main() {
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()
	if *showVersion {
		fmt.Printf("protoc-gen-openrpc %s\n", cli.Version)
		return
	}

	level := os.Getenv("PROTO2OPENRPC_LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	// stdout carries the response; logs must go to stderr
	log := observability.NewLogger(level, observability.TextFormat, os.Stderr)

	if err := plugin.Run(os.Stdin, os.Stdout, log); err != nil {
		fmt.Fprintf(os.Stderr, "protoc-gen-openrpc: %v\n", err)
		os.Exit(1)
	}
}
