// Package dispatch runs the scripts bound to matched keywords. Executions
// are detached from the recognition path: each script runs in its own
// goroutine with a hard timeout, at most one in flight per keyword, and
// every outcome lands in the state store as an ExecutionRecord. A failing
// script never propagates an error into the pipeline.
package dispatch

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"sync"
	"time"

	"horch/log"
	"horch/state"
)

const (
	// DefaultTimeout bounds a single script run.
	DefaultTimeout = 30 * time.Second
	// DefaultSnippetCap bounds the captured stdout/stderr per record.
	DefaultSnippetCap = 4096
	// waitDelay bounds how long Run may keep collecting output after the
	// script exits or the timeout fires. Without it a background child
	// inheriting the script's stdout (a detached browser, a stray sleep)
	// keeps the pipe open and Run blocks until that child exits, leaving
	// the keyword marked in-flight for the duration.
	waitDelay = time.Second
)

// Dispatcher executes keyword scripts asynchronously.
type Dispatcher struct {
	store      *state.Store
	timeout    time.Duration
	snippetCap int

	mu      sync.Mutex
	running map[string]bool
	wg      sync.WaitGroup
}

func New(store *state.Store) *Dispatcher {
	return &Dispatcher{
		store:      store,
		timeout:    DefaultTimeout,
		snippetCap: DefaultSnippetCap,
		running:    make(map[string]bool),
	}
}

// SetTimeout overrides the per-script timeout. Tests only.
func (d *Dispatcher) SetTimeout(t time.Duration) { d.timeout = t }

// Dispatch starts the script bound to keyword unless one is already running
// for it, in which case the request is dropped and recorded as skipped.
// Never blocks on script runtime.
func (d *Dispatcher) Dispatch(keyword, script string) {
	d.mu.Lock()
	if d.running[keyword] {
		d.mu.Unlock()
		log.Execution(keyword, string(state.StatusSkipped), 0)
		d.store.AppendExecution(state.ExecutionRecord{
			Keyword: keyword,
			Status:  state.StatusSkipped,
			Snippet: "previous execution still running",
		})
		return
	}
	d.running[keyword] = true
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			d.mu.Lock()
			delete(d.running, keyword)
			d.mu.Unlock()
		}()
		d.run(keyword, script)
	}()
}

func (d *Dispatcher) run(keyword, script string) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	out := &capWriter{cap: d.snippetCap}

	// No arguments, inherited environment; stdout and stderr share the
	// snippet buffer.
	cmd := exec.CommandContext(ctx, script)
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.WaitDelay = waitDelay
	err := cmd.Run()

	rec := state.ExecutionRecord{
		Keyword: keyword,
		Status:  classify(ctx, err),
		Snippet: out.String(),
	}
	if rec.Snippet == "" && err != nil && rec.Status != state.StatusOK {
		rec.Snippet = err.Error()
	}
	d.store.AppendExecution(rec)
	log.Execution(keyword, string(rec.Status), time.Since(start))
}

func classify(ctx context.Context, err error) state.ExecStatus {
	switch {
	case err == nil:
		return state.StatusOK
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return state.StatusTimeout
	case errors.Is(err, exec.ErrWaitDelay):
		// The script itself exited zero; a child it left behind still
		// held the output pipe when the collection window closed.
		return state.StatusOK
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, exec.ErrNotFound):
		return state.StatusNotFound
	default:
		// Non-zero exit, not-executable, and everything else.
		return state.StatusError
	}
}

// Wait blocks until all in-flight executions finish, or until grace
// elapses. It reports whether everything drained in time; stragglers are
// killed by their per-run timeout regardless.
func (d *Dispatcher) Wait(grace time.Duration) bool {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(grace):
		return false
	}
}

// capWriter keeps the first cap bytes and discards the rest.
type capWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
	cap int
}

func (w *capWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if room := w.cap - w.buf.Len(); room > 0 {
		if len(p) > room {
			w.buf.Write(p[:room])
		} else {
			w.buf.Write(p)
		}
	}
	return len(p), nil
}

func (w *capWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return string(bytes.TrimSpace(w.buf.Bytes()))
}
