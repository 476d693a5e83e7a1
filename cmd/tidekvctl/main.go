// Command tidekvctl is a small command line client for a tidekv server.
//
// Usage:
//
//	tidekvctl [-addr URL] [-timeout D] get KEY
//	tidekvctl [-addr URL] [-timeout D] [-ttl D] put KEY VALUE
//	tidekvctl [-addr URL] [-timeout D] del KEY
//	tidekvctl [-addr URL] [-timeout D] health
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/tidekv/engine/client"
	"github.com/tidekv/engine/internal/version"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitNotFound = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tidekvctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", envOr("TIDEKV_ADDR", "http://localhost:8080"), "tidekv server address")
	timeout := fs.Duration("timeout", client.DefaultTimeout, "request timeout")
	ttl := fs.Duration("ttl", 0, "time to live for put (0 means no expiry)")
	showVersion := fs.Bool("version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: tidekvctl [flags] get KEY | put KEY VALUE | del KEY | health")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}

	c, err := client.New(*addr, client.WithTimeout(*timeout))
	if err != nil {
		fmt.Fprintln(stderr, color.RedString("error: %v", err))
		return exitUsage
	}

	ctx := context.Background()
	cmd, operands := rest[0], rest[1:]

	switch cmd {
	case "get":
		if len(operands) != 1 {
			return usageError(stderr, "get takes exactly one KEY")
		}
		value, err := c.Get(ctx, operands[0])
		if err != nil {
			return report(stderr, operands[0], err)
		}
		fmt.Fprintln(stdout, string(value))

	case "put":
		if len(operands) != 2 {
			return usageError(stderr, "put takes a KEY and a VALUE")
		}
		value := parseValue(operands[1])
		if *ttl > 0 {
			err = c.InsertWithTTL(ctx, operands[0], value, *ttl)
		} else {
			err = c.Insert(ctx, operands[0], value)
		}
		if err != nil {
			return report(stderr, operands[0], err)
		}
		fmt.Fprintln(stdout, color.GreenString("queued %s", operands[0]))

	case "del":
		if len(operands) != 1 {
			return usageError(stderr, "del takes exactly one KEY")
		}
		if err := c.Delete(ctx, operands[0]); err != nil {
			return report(stderr, operands[0], err)
		}
		fmt.Fprintln(stdout, color.GreenString("queued removal of %s", operands[0]))

	case "health":
		if err := c.Health(ctx); err != nil {
			fmt.Fprintln(stderr, color.RedString("unhealthy: %v", err))
			return exitFailure
		}
		if err := c.Ready(ctx); err != nil {
			fmt.Fprintln(stdout, color.YellowString("healthy, not ready: %v", err))
			return exitFailure
		}
		fmt.Fprintln(stdout, color.GreenString("ok"))

	default:
		return usageError(stderr, fmt.Sprintf("unknown command %q", cmd))
	}

	return exitOK
}

// parseValue sends valid JSON as is and anything else as a JSON string
func parseValue(raw string) any {
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	return raw
}

func report(stderr io.Writer, key string, err error) int {
	if errors.Is(err, client.ErrNotFound) {
		fmt.Fprintln(stderr, color.YellowString("%s: not found", key))
		return exitNotFound
	}
	fmt.Fprintln(stderr, color.RedString("error: %v", err))
	return exitFailure
}

func usageError(stderr io.Writer, msg string) int {
	fmt.Fprintln(stderr, color.RedString("usage: %s", msg))
	return exitUsage
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
