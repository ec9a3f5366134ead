package dispatch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"horch/state"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestDispatcher() (*Dispatcher, *state.Store) {
	store := state.New([]string{"browser", "jupiter"}, time.Millisecond)
	return New(store), store
}

func lastRecord(t *testing.T, store *state.Store) state.ExecutionRecord {
	t.Helper()
	log := store.Snapshot().Log
	if len(log) == 0 {
		t.Fatal("no execution records")
	}
	return log[len(log)-1]
}

func TestDispatchSuccess(t *testing.T) {
	d, store := newTestDispatcher()
	script := writeScript(t, "ok.sh", "echo opening browser")

	d.Dispatch("browser", script)
	if !d.Wait(5 * time.Second) {
		t.Fatal("dispatcher did not drain")
	}

	rec := lastRecord(t, store)
	if !rec.Success() || rec.Status != state.StatusOK {
		t.Fatalf("record = %+v, want ok", rec)
	}
	if rec.Snippet != "opening browser" {
		t.Errorf("snippet = %q", rec.Snippet)
	}
	if rec.Keyword != "browser" {
		t.Errorf("keyword = %q", rec.Keyword)
	}
}

func TestDispatchNonZeroExit(t *testing.T) {
	d, store := newTestDispatcher()
	script := writeScript(t, "fail.sh", "echo boom >&2; exit 3")

	d.Dispatch("browser", script)
	d.Wait(5 * time.Second)

	rec := lastRecord(t, store)
	if rec.Success() || rec.Status != state.StatusError {
		t.Fatalf("record = %+v, want error", rec)
	}
	if !strings.Contains(rec.Snippet, "boom") {
		t.Errorf("stderr not captured: %q", rec.Snippet)
	}
}

func TestDispatchMissingScript(t *testing.T) {
	d, store := newTestDispatcher()

	d.Dispatch("browser", filepath.Join(t.TempDir(), "nope.sh"))
	d.Wait(5 * time.Second)

	rec := lastRecord(t, store)
	if rec.Status != state.StatusNotFound {
		t.Fatalf("status = %q, want not_found", rec.Status)
	}

	// The pipeline must keep accepting matches after a failure.
	ok := writeScript(t, "ok.sh", "true")
	d.Dispatch("jupiter", ok)
	d.Wait(5 * time.Second)
	if rec := lastRecord(t, store); rec.Status != state.StatusOK {
		t.Fatalf("dispatch after failure = %+v, want ok", rec)
	}
}

func TestDispatchTimeout(t *testing.T) {
	d, store := newTestDispatcher()
	d.SetTimeout(100 * time.Millisecond)
	script := writeScript(t, "slow.sh", "sleep 5")

	// The shell is killed at the deadline but the sleep child still holds
	// the output pipe; the record must land once the collection window
	// closes, not when the child exits 5 seconds later.
	start := time.Now()
	d.Dispatch("browser", script)
	if !d.Wait(3 * time.Second) {
		t.Fatal("dispatcher still blocked long past the timeout")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("timeout record took %v, want bounded by deadline+waitDelay", elapsed)
	}

	if rec := lastRecord(t, store); rec.Status != state.StatusTimeout {
		t.Fatalf("status = %q, want timeout", rec.Status)
	}

	// The keyword must be free for the next trigger immediately.
	ok := writeScript(t, "ok.sh", "true")
	d.Dispatch("browser", ok)
	d.Wait(5 * time.Second)
	if rec := lastRecord(t, store); rec.Status != state.StatusOK {
		t.Fatalf("dispatch after timeout = %+v, want ok", rec)
	}
}

func TestDispatchDetachedChildDoesNotBlock(t *testing.T) {
	d, store := newTestDispatcher()
	script := writeScript(t, "launch.sh", "sleep 5 &\necho started")

	// The script exits immediately; only its backgrounded child keeps the
	// stdout pipe open. The run must still complete as a success without
	// waiting for the child.
	start := time.Now()
	d.Dispatch("browser", script)
	if !d.Wait(3 * time.Second) {
		t.Fatal("dispatcher blocked on a detached child")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("record took %v, want bounded by waitDelay", elapsed)
	}

	rec := lastRecord(t, store)
	if rec.Status != state.StatusOK {
		t.Fatalf("status = %q, want ok", rec.Status)
	}
	if !strings.Contains(rec.Snippet, "started") {
		t.Errorf("snippet = %q, want captured output", rec.Snippet)
	}
}

func TestSecondTriggerWhileRunningIsSkipped(t *testing.T) {
	d, store := newTestDispatcher()
	script := writeScript(t, "slow.sh", "sleep 0.3; echo done")

	d.Dispatch("browser", script)
	time.Sleep(50 * time.Millisecond) // first run under way
	d.Dispatch("browser", script)

	// The skip is recorded synchronously, before the first run finishes.
	if rec := lastRecord(t, store); rec.Status != state.StatusSkipped {
		t.Fatalf("status = %q, want skipped", rec.Status)
	}

	d.Wait(5 * time.Second)
	log := store.Snapshot().Log
	var ok, skipped int
	for _, rec := range log {
		switch rec.Status {
		case state.StatusOK:
			ok++
		case state.StatusSkipped:
			skipped++
		}
	}
	if ok != 1 || skipped != 1 {
		t.Fatalf("ok = %d, skipped = %d, want 1/1 (log: %+v)", ok, skipped, log)
	}
}

func TestDistinctKeywordsRunConcurrently(t *testing.T) {
	d, store := newTestDispatcher()
	script := writeScript(t, "slow.sh", "sleep 0.2")

	start := time.Now()
	d.Dispatch("browser", script)
	d.Dispatch("jupiter", script)
	d.Wait(5 * time.Second)

	if elapsed := time.Since(start); elapsed > 380*time.Millisecond {
		t.Errorf("executions appear serialized: %v", elapsed)
	}
	for _, rec := range store.Snapshot().Log {
		if rec.Status != state.StatusOK {
			t.Errorf("record = %+v, want ok", rec)
		}
	}
}

func TestSnippetCapped(t *testing.T) {
	d, store := newTestDispatcher()
	script := writeScript(t, "loud.sh", "head -c 100000 /dev/zero | tr '\\0' 'x'")

	d.Dispatch("browser", script)
	d.Wait(5 * time.Second)

	if rec := lastRecord(t, store); len(rec.Snippet) > DefaultSnippetCap {
		t.Errorf("snippet length %d exceeds cap %d", len(rec.Snippet), DefaultSnippetCap)
	}
}

func TestCapWriter(t *testing.T) {
	w := &capWriter{cap: 8}
	w.Write([]byte("hello "))
	w.Write([]byte("world and more"))
	if got := w.String(); got != "hello wo" {
		t.Errorf("capWriter = %q", got)
	}
}
