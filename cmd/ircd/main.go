// Command ircd runs the IRC server engine. Usage mirrors args.go's
// single-flag style: a config file path is the only required argument,
// with the config itself (see server.Config) carrying everything else.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tsavola/ircd/server"
)

func main() {
	confFile := flag.String("conf", "", "Path to server configuration file (scfg format)")
	flag.Parse()

	if *confFile == "" {
		fmt.Fprintln(os.Stderr, "usage: ircd -conf <path>")
		os.Exit(1)
	}

	cfg, err := server.LoadConfig(*confFile)
	if err != nil {
		log.Fatalf("ircd: loading config: %s", err)
	}

	s := server.New(cfg)
	if err := s.Run(); err != nil {
		log.Fatalf("ircd: %s", err)
	}
}
