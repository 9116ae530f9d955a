package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/Bmoradi93/siyi-sdk/pkg/client"
	"github.com/Bmoradi93/siyi-sdk/pkg/wire"
)

// console is the interactive command loop.
type console struct {
	client *client.Client
	rl     *readline.Instance
}

func newConsole(c *client.Client) (*console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "siyi> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &console{client: c, rl: rl}, nil
}

func (cs *console) run(ctx context.Context, cancel context.CancelFunc) {
	defer cs.rl.Close()

	cs.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := cs.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			cancel()
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		opCtx, opCancel := context.WithTimeout(ctx, 10*time.Second)

		switch cmd {
		case "help", "?":
			cs.printHelp()

		case "status":
			cs.cmdStatus()

		case "version":
			cs.cmdVersion(opCtx)

		case "attitude", "att":
			cs.cmdAttitude(opCtx)

		case "angles":
			cs.cmdAngles(opCtx, args)

		case "speed":
			cs.cmdSpeed(opCtx, args)

		case "stop":
			cs.report(cs.client.StopRotation(opCtx))

		case "center":
			cs.report(cs.client.Center(opCtx))

		case "mode":
			cs.cmdMode(opCtx, args)

		case "photo":
			cs.report(cs.client.TakePhoto(opCtx))

		case "record":
			cs.report(cs.client.ToggleRecording(opCtx))

		case "zoom":
			cs.cmdZoom(opCtx, args)

		case "focus":
			cs.cmdFocus(opCtx, args)

		case "stream":
			cs.cmdStream(opCtx, args)

		case "quit", "exit", "q":
			fmt.Println("Exiting...")
			opCancel()
			cancel()
			return

		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}

		opCancel()
	}
}

func (cs *console) report(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("OK")
}

func (cs *console) cmdStatus() {
	snap := cs.client.State()
	stats := cs.client.Stats()

	fmt.Printf("Profile:    %s\n", cs.client.Profile().Name)
	if snap.Hardware.ID != "" {
		fmt.Printf("Hardware:   %s (%s)\n", snap.Hardware.ID, snap.Hardware.Model)
	}
	if !snap.AttitudeAt.IsZero() {
		fmt.Printf("Attitude:   yaw %.1f pitch %.1f roll %.1f (as of %s ago)\n",
			snap.Attitude.Yaw, snap.Attitude.Pitch, snap.Attitude.Roll,
			time.Since(snap.AttitudeAt).Round(time.Millisecond))
	}
	if !snap.ZoomAt.IsZero() {
		fmt.Printf("Zoom:       %.1fx\n", snap.ZoomLevel)
	}
	if !snap.InfoAt.IsZero() {
		fmt.Printf("Recording:  %s\n", snap.Info.Recording)
		fmt.Printf("Motion:     %s\n", snap.Info.Motion)
		fmt.Printf("Mount:      %s\n", snap.Info.Mount)
	}
	if fw, ok := cs.client.GimbalFirmware(); ok {
		fmt.Printf("Firmware:   gimbal %s\n", fw)
	}
	fmt.Printf("Stale:      %v\n", cs.client.IsStale(3*time.Second))
	fmt.Printf("Transport:  sent %d, received %d, malformed %d, unmatched %d, unknown %d\n",
		stats.FramesSent, stats.FramesReceived, stats.Malformed, stats.Unmatched, cs.client.UnknownFrames())
}

func (cs *console) cmdVersion(ctx context.Context) {
	fw, err := cs.client.FirmwareVersion(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Code board: %s\nGimbal:     %s\nZoom:       %s\n", fw.CodeBoard, fw.Gimbal, fw.Zoom)
}

func (cs *console) cmdAttitude(ctx context.Context) {
	att, err := cs.client.Attitude(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Yaw %.1f  Pitch %.1f  Roll %.1f\n", att.Yaw, att.Pitch, att.Roll)
	if att.HasRates {
		fmt.Printf("Rates: yaw %.1f  pitch %.1f  roll %.1f deg/s\n", att.YawRate, att.PitchRate, att.RollRate)
	}
}

func (cs *console) cmdAngles(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: angles <yaw> <pitch>")
		return
	}
	yaw, err1 := strconv.ParseFloat(args[0], 64)
	pitch, err2 := strconv.ParseFloat(args[1], 64)
	if err1 != nil || err2 != nil {
		fmt.Println("Usage: angles <yaw> <pitch>")
		return
	}

	att, err := cs.client.SetGimbalAngles(ctx, yaw, pitch)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Now at yaw %.1f pitch %.1f\n", att.Yaw, att.Pitch)
}

func (cs *console) cmdSpeed(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("Usage: speed <yaw> <pitch>   (percent, -100..100)")
		return
	}
	yaw, err1 := strconv.Atoi(args[0])
	pitch, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		fmt.Println("Usage: speed <yaw> <pitch>   (percent, -100..100)")
		return
	}
	cs.report(cs.client.SetGimbalSpeed(ctx, yaw, pitch))
}

func (cs *console) cmdMode(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: mode <lock|follow|fpv>")
		return
	}
	var mode wire.MotionMode
	switch strings.ToLower(args[0]) {
	case "lock":
		mode = wire.MotionLock
	case "follow":
		mode = wire.MotionFollow
	case "fpv":
		mode = wire.MotionFPV
	default:
		fmt.Println("Usage: mode <lock|follow|fpv>")
		return
	}
	cs.report(cs.client.SetMotionMode(ctx, mode))
}

func (cs *console) cmdZoom(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: zoom <level|in|out|stop|?>")
		return
	}

	switch args[0] {
	case "in":
		level, err := cs.client.ZoomIn(ctx)
		cs.reportZoom(level, err)
	case "out":
		level, err := cs.client.ZoomOut(ctx)
		cs.reportZoom(level, err)
	case "stop":
		level, err := cs.client.StopZoom(ctx)
		cs.reportZoom(level, err)
	case "?":
		level, err := cs.client.ZoomLevel(ctx)
		cs.reportZoom(level, err)
	default:
		level, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			fmt.Println("Usage: zoom <level|in|out|stop|?>")
			return
		}
		cs.report(cs.client.SetAbsoluteZoom(ctx, level))
	}
}

func (cs *console) reportZoom(level float64, err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Zoom %.1fx\n", level)
}

func (cs *console) cmdFocus(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: focus <auto|far|near|stop>")
		return
	}
	switch strings.ToLower(args[0]) {
	case "auto":
		cs.report(cs.client.AutoFocus(ctx))
	case "far":
		cs.report(cs.client.FocusFar(ctx))
	case "near":
		cs.report(cs.client.FocusNear(ctx))
	case "stop":
		cs.report(cs.client.StopFocus(ctx))
	default:
		fmt.Println("Usage: focus <auto|far|near|stop>")
	}
}

func (cs *console) cmdStream(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: stream <hz>   (0, 2, 4, 5, 10, 20, 50, 100)")
		return
	}
	hz, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("Usage: stream <hz>   (0, 2, 4, 5, 10, 20, 50, 100)")
		return
	}
	cs.report(cs.client.RequestDataStream(ctx, wire.StreamAttitude, hz))
}

func (cs *console) printHelp() {
	fmt.Println(`
SIYI Camera Commands:
  Gimbal:
    attitude                - Query attitude and angular rates
    angles <yaw> <pitch>    - Command absolute angles in degrees
    speed <yaw> <pitch>     - Command rotation rates in percent
    stop                    - Halt rotation
    center                  - Return to neutral position
    mode <lock|follow|fpv>  - Switch stabilization mode

  Camera:
    photo                   - Take a photo
    record                  - Toggle video recording
    zoom <level|in|out|stop|?> - Zoom control
    focus <auto|far|near|stop> - Focus control

  Telemetry:
    stream <hz>             - Request attitude push stream
    status                  - Show last known device state
    version                 - Query firmware versions

  quit                      - Exit`)
}
