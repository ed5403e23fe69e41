package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/fumin/arcd"
	"github.com/fumin/arcd/ac"
)

var method = flag.String("method", "adaptive", "model: adaptive, order1 or ctw")
var depth = flag.Int("depth", 48, "depth of Context Tree Weighting")
var rangeBits = flag.Uint("range", ac.DefaultPrecision.RangeBits, "bits of the coding interval")
var freqBits = flag.Uint("freq", ac.DefaultPrecision.FreqBits, "bits of the frequency totals")
var verbose = flag.Bool("verbose", false, "verbosity")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] filename\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	name := flag.Arg(0)
	if name == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(name); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(name string) error {
	m, err := arcd.ParseMethod(*method)
	if err != nil {
		return errors.Wrap(err, "")
	}
	cfg := arcd.Config{
		Method:    m,
		Precision: ac.Precision{RangeBits: *rangeBits, FreqBits: *freqBits},
	}
	if m == arcd.CTW {
		cfg.Depth = *depth
	}
	if *verbose {
		cfg.Logger = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
	}

	f, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()
	if err := arcd.Compress(os.Stdout, f, cfg); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
