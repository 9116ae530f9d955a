// Command siyi-log views and analyzes SIYI protocol capture files.
//
// Capture files are created by passing -capture to siyi-ctl, or by
// wiring a log.FileLogger into an SDK client.
//
// Usage:
//
//	siyi-log <command> [flags] <file.slog>
//
// Commands:
//
//	view     View a capture in human-readable format
//	stats    Show statistics about a capture
//	filter   Filter a capture and write a new file
//
// Examples:
//
//	# View all events
//	siyi-log view gimbal.slog
//
//	# View only decoded commands, outbound
//	siyi-log view -layer wire -direction out gimbal.slog
//
//	# Per-command traffic counts
//	siyi-log stats gimbal.slog
//
//	# Keep only one session's events
//	siyi-log filter -session 6f1c... -o one.slog gimbal.slog
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Bmoradi93/siyi-sdk/pkg/log"
)

const usage = `siyi-log - SIYI protocol capture analyzer

Usage:
  siyi-log <command> [flags] <file.slog>

Commands:
  view     View a capture in human-readable format
  stats    Show statistics about a capture
  filter   Filter a capture and write a new file

Use "siyi-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "stats":
		runStats(args)
	case "filter":
		runFilter(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func buildFilter(session, layer, direction string) (log.Filter, *log.Direction, error) {
	filter := log.NoFilter
	filter.SessionID = session

	if layer != "" {
		switch strings.ToLower(layer) {
		case "transport":
			filter.Layer = log.LayerTransport
		case "wire":
			filter.Layer = log.LayerWire
		case "session":
			filter.Layer = log.LayerSession
		default:
			return log.Filter{}, nil, fmt.Errorf("unknown layer %q (use: transport, wire, session)", layer)
		}
	}

	var dir *log.Direction
	if direction != "" {
		var d log.Direction
		switch strings.ToLower(direction) {
		case "in":
			d = log.DirectionIn
		case "out":
			d = log.DirectionOut
		default:
			return log.Filter{}, nil, fmt.Errorf("unknown direction %q (use: in, out)", direction)
		}
		dir = &d
	}

	return filter, dir, nil
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	session := fs.String("session", "", "Filter by session ID")
	layer := fs.String("layer", "", "Filter by layer (transport, wire, session)")
	direction := fs.String("direction", "", "Filter by direction (in, out)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		os.Exit(1)
	}

	filter, dir, err := buildFilter(*session, *layer, *direction)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	reader, err := log.OpenCapture(fs.Arg(0), filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if dir != nil && event.Direction != *dir {
			continue
		}
		printEvent(event)
	}
}

func printEvent(event log.Event) {
	ts := event.Timestamp.Format("15:04:05.000000")

	switch {
	case event.Command != nil:
		fmt.Printf("%s %-3s %-22s seq=%-5d len=%d\n",
			ts, event.Direction, event.Command.Name, event.Command.Seq, event.Command.PayloadSize)
		if event.Frame != nil && len(event.Frame.Data) > 0 {
			suffix := ""
			if event.Frame.Truncated {
				suffix = "..."
			}
			fmt.Printf("    %s%s\n", hex.EncodeToString(event.Frame.Data), suffix)
		}
	case event.StateChange != nil:
		fmt.Printf("%s     state %s -> %s\n", ts, event.StateChange.From, event.StateChange.To)
	case event.Error != nil:
		fmt.Printf("%s     error: %s\n", ts, event.Error.Message)
	default:
		fmt.Printf("%s %-3s %s/%s\n", ts, event.Direction, event.Layer, event.Category)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		os.Exit(1)
	}

	reader, err := log.OpenCapture(fs.Arg(0), log.NoFilter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	events, err := reader.All()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(events) == 0 {
		fmt.Println("Empty capture.")
		return
	}

	var in, out, errCount int
	sessions := make(map[string]bool)
	perCommand := make(map[string]int)

	for _, event := range events {
		sessions[event.SessionID] = true
		if event.Category == log.CategoryError {
			errCount++
			continue
		}
		if event.Command == nil {
			continue
		}
		if event.Direction == log.DirectionIn {
			in++
		} else {
			out++
		}
		perCommand[event.Command.Name]++
	}

	first := events[0].Timestamp
	last := events[len(events)-1].Timestamp

	fmt.Printf("Events:    %d (%d out, %d in, %d errors)\n", len(events), out, in, errCount)
	fmt.Printf("Sessions:  %d\n", len(sessions))
	fmt.Printf("Duration:  %s (%s to %s)\n",
		last.Sub(first).Round(time.Millisecond), first.Format("15:04:05"), last.Format("15:04:05"))

	names := make([]string, 0, len(perCommand))
	for name := range perCommand {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return perCommand[names[i]] > perCommand[names[j]] })

	fmt.Println("Commands:")
	for _, name := range names {
		fmt.Printf("  %-22s %d\n", name, perCommand[name])
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	session := fs.String("session", "", "Keep only this session's events")
	layer := fs.String("layer", "", "Keep only this layer (transport, wire, session)")
	output := fs.String("o", "", "Output file path (required)")
	fs.Parse(args)

	if fs.NArg() < 1 || *output == "" {
		fmt.Fprintln(os.Stderr, "Error: capture file path and -o output required")
		os.Exit(1)
	}

	filter, _, err := buildFilter(*session, *layer, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	reader, err := log.OpenCapture(fs.Arg(0), filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	out, err := os.Create(*output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	encoder := log.NewEncoder(out)
	count := 0
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := encoder.Encode(event); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		count++
	}

	fmt.Printf("Wrote %d events to %s\n", count, *output)
}
