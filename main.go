package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"horch/audio"
	"horch/config"
	"horch/dispatch"
	"horch/log"
	"horch/matcher"
	"horch/recognizer"
	"horch/state"
)

var version = "dev"

const (
	shutdownGrace    = 5 * time.Second
	captureRetries   = 3
	demoWordInterval = 600 * time.Millisecond
)

// stringList collects repeatable -keywords flags; comma-separated values
// are split too.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var keywordPairs stringList
	flag.Var(&keywordPairs, "keywords", "keyword binding as 'keyword:script.sh' (repeatable)")
	modelFlag := flag.String("model", "model-de", "Path to the Vosk speech model directory")
	highlightFlag := flag.Duration("highlight", time.Second, "Highlight duration after a trigger (also the debounce window)")
	thresholdFlag := flag.Float64("threshold", matcher.DefaultThreshold, "Minimum similarity for a fuzzy keyword match")
	deviceFlag := flag.String("device", "", "Use named microphone device (otherwise system default)")
	demoFlag := flag.Bool("demo", false, "Demo mode: scripted word source, no microphone or model")
	tuiFlag := flag.Bool("tui", true, "Run with the terminal dashboard")
	doctorFlag := flag.Bool("doctor", false, "Check model, devices and scripts, then exit")
	logPathFlag := flag.String("logpath", "", "Log directory path (default: OS-specific location)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("horch %s\n", version)
		return 0
	}

	bindings, err := config.ParseBindings(keywordPairs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: horch -keywords browser:browser.sh -keywords jupyter:jupyter.sh")
		return 1
	}

	if *doctorFlag {
		return runDoctor(bindings, *modelFlag)
	}

	logDir, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		return 1
	}
	log.SetDir(logDir)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	store := state.New(config.Keywords(bindings), *highlightFlag)
	match := matcher.New(bindings, *thresholdFlag)
	disp := dispatch.New(store)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Mode selection happens exactly once; everything downstream depends
	// only on the Recognizer and CaptureDevice contracts.
	mode := "live"
	var rec recognizer.Recognizer
	var audioCtx audio.Context
	if *demoFlag {
		mode = "demo"
		rec = recognizer.NewScripted(demoWords(bindings), demoWordInterval, true)
		audioCtx = audio.NewSyntheticContext()
	} else {
		rec, err = recognizer.NewVosk(*modelFlag, audio.SampleRate)
		if err != nil {
			log.Errorf("recognizer init: %v", err)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		audioCtx, err = audio.NewContext()
		if err != nil {
			log.Errorf("audio context init: %v", err)
			fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
			return 1
		}
	}
	defer audioCtx.Close()

	capture, err := openCapture(audioCtx, *deviceFlag)
	if err != nil {
		log.Errorf("capture init: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing capture device: %v\n", err)
		return 1
	}
	defer capture.Close()

	// VAD only feeds the dashboard's speech indicator; losing it is not
	// fatal.
	vp, err := newVADProcessor()
	if err != nil {
		log.Warnf("vad init: %v", err)
		vp = nil
	}

	capture.SetCallback(func(data []byte, _ uint32) {
		rec.Push(data)
		if vp != nil {
			vp.Process(data)
		}
		tuiSend(AudioLevelMsg{Level: rmsLevel(data)})
	})
	if err := startCapture(ctx, capture); err != nil {
		log.Errorf("capture start: %v", err)
		fmt.Fprintf(os.Stderr, "Error starting capture: %v\n", err)
		return 1
	}

	log.SessionStart(*modelFlag, len(bindings), mode)

	p := &pipeline{rec: rec, match: match, store: store, disp: disp}
	go p.run(ctx)

	if vp != nil {
		go func() {
			ticker := time.NewTicker(renderInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					tuiSend(SpeechMsg{Active: vp.HasSpeechTick()})
				}
			}
		}()
	}

	// Renderer: dashboard on a real terminal, plain line output otherwise.
	if *tuiFlag && term.IsTerminal(int(os.Stdout.Fd())) {
		tuiMu.Lock()
		tuiProgram = NewDashboard(store)
		tuiMu.Unlock()

		go func() {
			<-ctx.Done()
			tuiQuit()
		}()

		tuiSend(ModeLineMsg{Text: modeLine(mode, *modelFlag, bindings)})
		tuiSend(DeviceLineMsg{Text: "mic: " + capture.DeviceName()})

		if _, err := tuiProgram.Run(); err != nil {
			// Terminal capability mismatch: degrade, don't crash.
			log.Errorf("dashboard error: %v", err)
			runPlainRenderer(ctx, store)
		}
		cancel()
	} else {
		runPlainRenderer(ctx, store)
	}

	// Bounded shutdown: capture stops within a frame read, the decoder
	// drains its queue, scripts get a grace period.
	capture.Stop()
	capture.ClearCallback()
	rec.Close()
	if !disp.Wait(shutdownGrace) {
		log.Warn("shutdown: scripts still running after grace period")
	}

	snap := store.Snapshot()
	var triggers uint64
	for _, kw := range snap.Keywords {
		triggers += kw.Count
	}
	log.SessionEnd(triggers)
	printSummary(snap)
	return 0
}

func openCapture(ctx audio.Context, deviceName string) (audio.CaptureDevice, error) {
	cfg := audio.CaptureConfig{SampleRate: audio.SampleRate, Channels: audio.Channels}
	var selected *audio.DeviceInfo
	if deviceName != "" {
		devices, err := ctx.Devices()
		if err != nil {
			return nil, err
		}
		for i := range devices {
			if devices[i].Name == deviceName {
				selected = &devices[i]
				break
			}
		}
		if selected == nil {
			return nil, fmt.Errorf("capture device not found: %s", deviceName)
		}
	}
	return ctx.NewCapture(selected, cfg)
}

// startCapture retries transient failures with backoff; capture trouble
// after startup is a dropout, not a crash.
func startCapture(ctx context.Context, capture audio.CaptureDevice) error {
	var err error
	backoff := 250 * time.Millisecond
	for attempt := 0; attempt <= captureRetries; attempt++ {
		if err = capture.Start(); err == nil {
			return nil
		}
		log.Warnf("capture start failed (attempt %d): %v", attempt+1, err)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

func modeLine(mode, model string, bindings []config.Binding) string {
	if mode == "demo" {
		return fmt.Sprintf("[demo | %d keywords]", len(bindings))
	}
	return fmt.Sprintf("[%s | %d keywords]", model, len(bindings))
}

// demoWords interleaves filler words with the configured keywords so a demo
// run exercises real matches without a microphone.
func demoWords(bindings []config.Binding) []string {
	filler := [][]string{
		{"guten", "morgen"},
		{"das", "wetter", "ist", "schoen"},
		{"bitte", "oeffne"},
		{"und", "dann"},
	}
	var words []string
	for i, b := range bindings {
		words = append(words, filler[i%len(filler)]...)
		words = append(words, b.Keyword)
	}
	words = append(words, "danke", "das", "war", "alles")
	return words
}
