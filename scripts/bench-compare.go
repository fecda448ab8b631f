//go:build ignore

// Package main compares sift benchmark runs and flags regressions.
// Usage:
//
//	go test -bench . -benchmem ./internal/... > current.txt
//	go run scripts/bench-compare.go current.txt baseline.txt
//
// Benchmarks present in only one file are reported but never fail the run;
// a ns/op regression beyond the threshold exits non-zero.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
)

var (
	threshold = flag.Float64("threshold", 0.20, "Allowed ns/op degradation before failing (fraction)")
	failOnReg = flag.Bool("fail", true, "Exit with code 1 on regression")
)

// benchLine matches standard `go test -bench` output:
// BenchmarkName-N   iterations   ns/op   [B/op]   [allocs/op]
var benchLine = regexp.MustCompile(`^(Benchmark\S+)\s+(\d+)\s+([\d.]+)\s+ns/op`)

type result struct {
	name    string
	nsPerOp float64
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <current.txt> <baseline.txt>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	current, err := parseFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", flag.Arg(0), err)
		os.Exit(1)
	}
	baseline, err := parseFile(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", flag.Arg(1), err)
		os.Exit(1)
	}

	regressed := 0
	for name, cur := range current {
		base, ok := baseline[name]
		if !ok {
			fmt.Printf("NEW       %-50s %12.1f ns/op\n", name, cur.nsPerOp)
			continue
		}

		delta := (cur.nsPerOp - base.nsPerOp) / base.nsPerOp
		status := "ok"
		if delta > *threshold {
			status = "REGRESSED"
			regressed++
		} else if delta < -0.10 {
			status = "improved"
		}
		fmt.Printf("%-9s %-50s %12.1f -> %12.1f ns/op (%+.1f%%)\n",
			status, name, base.nsPerOp, cur.nsPerOp, delta*100)
	}

	for name := range baseline {
		if _, ok := current[name]; !ok {
			fmt.Printf("MISSING   %-50s\n", name)
		}
	}

	if regressed > 0 {
		fmt.Printf("\n%d benchmark(s) regressed beyond %.0f%%\n", regressed, *threshold*100)
		if *failOnReg {
			os.Exit(1)
		}
	}
}

func parseFile(path string) (map[string]result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	results := make(map[string]result)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := benchLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		ns, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}
		results[m[1]] = result{name: m[1], nsPerOp: ns}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no benchmark lines found")
	}
	return results, scanner.Err()
}
