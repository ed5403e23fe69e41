package main

import (
	"flag"
	"log"
	"os"

	"github.com/fumin/arcd"
)

var verbose = flag.Bool("verbose", false, "verbosity")

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	var logger arcd.Logger
	if *verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
	}
	if err := arcd.Decompress(os.Stdout, os.Stdin, logger); err != nil {
		log.Fatalf("%+v", err)
	}
}
