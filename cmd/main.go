// evmacro - Input macro recorder
// Records Linux input events from an evdev device and replays them through uinput
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"

	"evmacro/internal/config"
	"evmacro/internal/input"
	"evmacro/internal/macro"
	"evmacro/internal/metrics"
	"evmacro/internal/osutils"
	"evmacro/internal/player"
	"evmacro/internal/protocol"
	"evmacro/internal/recorder"
)

var (
	version    = "0.1.0"
	configPath = flag.String("config", "", "Path to config file (.json, .yaml)")
	showVer    = flag.Bool("version", false, "Show version")
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage: evmacro [flags] <command> [command flags]")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  record   Record events from an input device into a file")
	fmt.Fprintln(out, "  play     Replay a recording through a virtual device")
	fmt.Fprintln(out, "  list     List input devices")
	fmt.Fprintln(out, "  info     Describe a recording")
	fmt.Fprintln(out, "  config   Manage the config file (config init [-force])")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Flags:")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *showVer {
		fmt.Printf("evmacro version %s\n", version)
		return
	}
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	// Initialize config
	cfgMgr, err := config.NewManager(*configPath)
	if err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	if err := cfgMgr.Load(); err != nil {
		// config init may overwrite a broken file
		if flag.Arg(0) != "config" {
			log.Fatalf("Failed to load config: %v", err)
		}
		log.Printf("Warning: ignoring config: %v", err)
	}
	cfg := cfgMgr.Get()

	closeLog, err := setupLogging(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer closeLog()

	reg := metrics.NewRegistry()

	args := flag.Args()
	switch args[0] {
	case "record":
		err = runRecord(cfg, reg, args[1:])
	case "play":
		err = runPlay(cfg, reg, args[1:])
	case "list":
		err = runList(cfg)
	case "info":
		err = runInfo(args[1:])
	case "config":
		err = runConfig(cfgMgr, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", args[0])
		usage()
		os.Exit(2)
	}

	if cfg.Metrics.Textfile != "" {
		if werr := reg.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			log.Printf("Warning: failed to write metrics to %s: %v", cfg.Metrics.Textfile, werr)
		}
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Printf("%s failed: %v", args[0], err)
		closeLog()
		os.Exit(1)
	}
}

// setupLogging copies the log to a file when one is configured
func setupLogging(cfg config.LoggingConfig) (func(), error) {
	if cfg.File == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

func runRecord(cfg *config.Config, reg *metrics.Registry, args []string) error {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	output := fs.String("o", "", "The file to store the recording in")
	devicePath := fs.String("d", cfg.Record.Device, "The device (i.e. /dev/input/eventX) to use")
	verbose := fs.Bool("v", cfg.Logging.Verbose, "Print every recorded event")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return errors.New("missing -o output file")
	}

	if err := osutils.RequireRoot("access raw input events"); err != nil {
		return err
	}

	path := *devicePath
	if path == "" {
		chosen, err := chooseDevice(cfg.Record.DeviceDir, os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		path = chosen
	}

	dev, err := input.OpenDevice(path)
	if err != nil {
		return macro.DeviceError(macro.StageProbe, err)
	}
	defer dev.Close()
	fmt.Printf("Using device %s (%s)\n", dev.Name(), path)

	out, err := os.Create(*output)
	if err != nil {
		return macro.IOError(macro.StageEncode, fmt.Errorf("can't open output file: %w", err))
	}
	defer out.Close()

	// CTRL-C ends the recording once the next event arrives
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	stop := &recorder.StopFlag{}
	requestStopOnDone(ctx, stop)

	opts := recorder.DefaultOptions()
	opts.CountdownSteps = cfg.Record.CountdownSteps
	opts.CountdownInterval = time.Duration(cfg.Record.CountdownInterval)
	opts.Metrics = reg.Recorder
	if *verbose {
		opts.OnEvent = func(e macro.Event) {
			fmt.Printf("%v %s %d %d\n", e.Time, input.TypeName(e.Type), e.Code, e.Value)
		}
	}

	rec := recorder.New(dev, dev, out, opts)
	log.Printf("Recorder: Session %s recording %s to %s", rec.Session(), path, *output)
	list, err := rec.Run(stop)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return macro.IOError(macro.StageEncode, err)
	}

	fmt.Printf("Wrote %d events (%v) to %s\n", list.Len(), list.Duration().Round(time.Millisecond), *output)
	return nil
}

// requestStopOnDone sets stop once ctx is done
func requestStopOnDone(ctx context.Context, stop *recorder.StopFlag) {
	go func() {
		<-ctx.Done()
		stop.Request()
	}()
}

// chooseDevice prompts for one of the devices under dir
func chooseDevice(dir string, in io.Reader, out io.Writer) (string, error) {
	devices, err := input.ListDevices(dir)
	if err != nil {
		return "", fmt.Errorf("can't read %s: %w", dir, err)
	}
	if len(devices) == 0 {
		return "", fmt.Errorf("no readable input devices in %s", dir)
	}

	fmt.Fprintln(out, "Choose a device:")
	for i, d := range devices {
		fmt.Fprintf(out, "  %2d) %s\n", i+1, d)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "Device [1-%d]: ", len(devices))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", errors.New("no device selected")
		}
		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || n < 1 || n > len(devices) {
			fmt.Fprintln(out, "Invalid choice")
			continue
		}
		return devices[n-1].Path, nil
	}
}

func runPlay(cfg *config.Config, reg *metrics.Registry, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	inputPath := fs.String("i", "", "The macro recording file to play")
	speed := fs.Float64("speed", cfg.Playback.Speed, "Playback speed multiplier")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inputPath == "" {
		fs.Usage()
		return errors.New("missing -i input file")
	}

	if err := osutils.RequireRoot("create a virtual input device"); err != nil {
		return err
	}

	list, err := protocol.ReadFile(*inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	dev, err := input.CreateVirtualDevice(cfg.Playback.DeviceName, list.Capabilities, input.VirtualOptions{
		AbsMin: cfg.Playback.AbsMin,
		AbsMax: cfg.Playback.AbsMax,
	})
	if err != nil {
		return macro.DeviceError(macro.StagePlayback, fmt.Errorf("failed to create uinput device: %w", err))
	}
	defer dev.Close()

	p, err := player.New(dev, player.Options{Speed: *speed, Metrics: reg.Player})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return p.Play(ctx, list)
}

// runConfig handles "config init", which writes the default configuration
func runConfig(mgr *config.Manager, args []string) error {
	if len(args) == 0 || args[0] != "init" {
		return errors.New("usage: evmacro config init [-force]")
	}
	fs := flag.NewFlagSet("config init", flag.ContinueOnError)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	if !*force {
		if _, err := os.Stat(mgr.Path()); err == nil {
			return fmt.Errorf("%s already exists (use -force to overwrite)", mgr.Path())
		}
	}

	mgr.Set(config.DefaultConfig())
	if err := mgr.Save(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("Wrote default configuration to %s\n", mgr.Path())
	return nil
}

func runList(cfg *config.Config) error {
	devices, err := input.ListDevices(cfg.Record.DeviceDir)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Printf("No readable input devices in %s (try running as root)\n", cfg.Record.DeviceDir)
		return nil
	}

	fmt.Println("Input Devices:")
	fmt.Println("--------------")
	for _, d := range devices {
		fmt.Printf("%s\n  Name: %s\n", d.Path, d.Name)
	}
	return nil
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	inputPath := fs.String("i", "", "The macro recording file to describe")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inputPath == "" {
		fs.Usage()
		return errors.New("missing -i input file")
	}

	list, err := protocol.ReadFile(*inputPath)
	if err != nil {
		return err
	}
	describe(os.Stdout, list)
	return nil
}

// describe prints a summary of a recording
func describe(w io.Writer, list *macro.EventList) {
	names := make([]string, 0, len(list.Capabilities.EventTypes))
	for _, t := range list.Capabilities.EventTypes {
		names = append(names, input.TypeName(uint16(t)))
	}

	fmt.Fprintf(w, "Event types: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(w, "Event codes: %d\n", len(list.Capabilities.EventCodes))
	fmt.Fprintf(w, "Events:      %d\n", list.Len())
	fmt.Fprintf(w, "Duration:    %v\n", list.Duration())

	if err := list.Validate(); err != nil {
		color.New(color.FgRed).Fprintf(w, "Ordering:    ✗ %v\n", err)
	} else {
		color.New(color.FgGreen).Fprintln(w, "Ordering:    ✓ OK")
	}

	uncovered := list.Uncovered()
	if len(uncovered) == 0 {
		color.New(color.FgGreen).Fprintln(w, "Coverage:    ✓ every recorded code is in the manifest")
		return
	}
	color.New(color.FgYellow).Fprintf(w, "Coverage:    %d recorded codes missing from the manifest\n", len(uncovered))
	for _, p := range uncovered {
		fmt.Fprintf(w, "  %s %d\n", input.TypeName(uint16(p.Type)), p.Code)
	}
}
