package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/simonhull/audioseek"
)

// Diagnostic tool: probe a file's seek strategy and map a timestamp to
// a byte offset and back.
func main() {
	at := flag.Duration("at", 0, "timestamp to seek to (e.g. 1m30s)")
	window := flag.Int64("scan-window", 0, "resync scan window in bytes (0 = default)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: seek-probe [-at 1m30s] <file.mp3>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	var opts []audioseek.Option
	if *window > 0 {
		opts = append(opts, audioseek.WithScanWindow(*window))
	}

	stream, err := audioseek.Open(path, opts...)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer stream.Close()

	fmt.Printf("strategy:  %s\n", stream.Seeker)
	if d, ok := stream.Seeker.Duration(); ok {
		fmt.Printf("duration:  %s\n", d)
	} else {
		fmt.Printf("duration:  unknown\n")
	}
	if end, ok := stream.Seeker.DataEnd(); ok {
		fmt.Printf("data end:  %d\n", end)
	} else {
		fmt.Printf("data end:  unknown\n")
	}
	for _, w := range stream.Warnings {
		fmt.Printf("warning:   %s\n", w)
	}

	points := stream.Seeker.SeekPoints(*at)
	if points.Exact() {
		fmt.Printf("estimate:  byte %d (t=%s)\n", points.First.Position, points.First.Time)
	} else {
		fmt.Printf("estimate:  bytes %d..%d (t=%s..%s)\n",
			points.First.Position, points.Second.Position, points.First.Time, points.Second.Time)
	}

	result, err := stream.SeekTo(context.Background(), *at)
	if err != nil {
		fmt.Printf("Error: seek failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("landed:    byte %d (t=%s, frame %d bytes / %s)\n",
		result.Position, result.Time, result.Frame.Size, result.Frame.Duration)
}
