package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/quicfile/quicfile-go/pkg/fserve"
	"github.com/quicfile/quicfile-go/pkg/provision"
)

// appName must match the server's, so the cached self-signed certificate is
// found and trusted.
const appName = "quicfile"

func main() {
	hostOverride := flag.String("host", "", "override the host name used for certificate verification")
	insecure := flag.Bool("insecure", false, "skip server certificate verification")
	output := flag.String("o", "", "write the response body to this file instead of discarding it")
	verbose := flag.Bool("v", false, "debug logging")

	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	if flag.NArg() != 1 {
		log.Fatalf("Usage: %s [flags] URL", os.Args[0])
	}

	if err := run(flag.Arg(0), *hostOverride, *output, *insecure); err != nil {
		log.WithError(err).Fatal("Transfer failed")
	}
}

// run performs the fetch and owns the output file. Fatal exits happen in
// main, after run's deferred cleanup has finished.
func run(rawURL, hostOverride, output string, insecure bool) error {
	target, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing URL: %w", err)
	}

	var body io.Writer = io.Discard
	if output != "" {
		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer file.Close()
		body = file
	}

	roots, err := provision.CachedCertPool(appName)
	if err != nil {
		return fmt.Errorf("loading certificate pool: %w", err)
	}

	stats, err := fserve.Fetch(context.Background(), target, fserve.ClientConfig{
		HostOverride: hostOverride,
		Roots:        roots,
		Insecure:     insecure,
	}, body)
	if err != nil {
		return err
	}

	fmt.Printf("connected in %v\n", stats.ConnectDuration)
	fmt.Printf("request sent at %v\n", stats.RequestDuration)
	fmt.Printf("response received in %v - %d bytes, %.2f MiB/s\n",
		stats.ResponseDuration, stats.Bytes, stats.Throughput())

	return nil
}
