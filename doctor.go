package main

import (
	"fmt"
	"os"
	"time"

	"horch/audio"
	"horch/config"
	"horch/dispatch"
	"horch/state"
)

// runDoctor checks the configuration end to end: model directory, capture
// devices, and every bound script (stat, exec bit, one real run through the
// dispatcher). Returns 0 when everything passes.
func runDoctor(bindings []config.Binding, modelPath string) int {
	fmt.Println("horch doctor - configuration diagnostics")
	fmt.Println("========================================")
	allPass := true

	fmt.Println()
	fmt.Println("[1/3] Speech model")
	if info, err := os.Stat(modelPath); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		fmt.Println("  Download a Vosk model (e.g. vosk-model-small-de) and pass -model.")
		allPass = false
	} else if !info.IsDir() {
		fmt.Printf("  FAIL: %s is not a directory\n", modelPath)
		allPass = false
	} else {
		fmt.Printf("  PASS: %s\n", modelPath)
	}

	fmt.Println()
	fmt.Println("[2/3] Capture devices")
	if ctx, err := audio.NewContext(); err != nil {
		fmt.Printf("  FAIL: audio context: %v\n", err)
		allPass = false
	} else {
		devices, err := ctx.Devices()
		ctx.Close()
		if err != nil {
			fmt.Printf("  FAIL: enumerate devices: %v\n", err)
			allPass = false
		} else if len(devices) == 0 {
			fmt.Println("  WARN: no capture devices found (system default may still work)")
		} else {
			fmt.Printf("  PASS: %d device(s)\n", len(devices))
			for _, d := range devices {
				fmt.Printf("    - %s\n", d.Name)
			}
		}
	}

	fmt.Println()
	fmt.Println("[3/3] Keyword scripts")
	store := state.New(config.Keywords(bindings), time.Millisecond)
	disp := dispatch.New(store)
	for _, b := range bindings {
		info, err := os.Stat(b.Script)
		switch {
		case err != nil:
			fmt.Printf("  FAIL: %q -> %s: %v\n", b.Keyword, b.Script, err)
			allPass = false
			continue
		case info.Mode()&0o111 == 0:
			fmt.Printf("  FAIL: %q -> %s: not executable\n", b.Keyword, b.Script)
			allPass = false
			continue
		}
		disp.Dispatch(b.Keyword, b.Script)
	}
	if !disp.Wait(2 * dispatch.DefaultTimeout) {
		fmt.Println("  WARN: some scripts still running after grace period")
	}
	for _, rec := range store.Snapshot().Log {
		verdict := "PASS"
		if !rec.Success() {
			verdict = "FAIL"
			allPass = false
		}
		fmt.Printf("  %s: %q -> %s", verdict, rec.Keyword, rec.Status)
		if snippet := firstLine(rec.Snippet); snippet != "" {
			fmt.Printf(" | %s", snippet)
		}
		fmt.Println()
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}
