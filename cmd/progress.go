package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"

	"stackctl/internal/api"
	"stackctl/internal/app"
	"stackctl/internal/orchestrator"
)

// errUnhealthy is returned by validate when any enabled service is not
// healthy.
var errUnhealthy = errors.New("one or more services are not healthy")

// newApplication bootstraps the application from the global flags.
func newApplication(offline bool) (*app.Application, error) {
	cfg := app.NewConfig(debug, quiet, configPath, manifestsDir, kubeconfig)
	cfg.Offline = offline

	application, err := app.NewApplication(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}

func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// progress reports lifecycle transitions of a running batch: a spinner
// names the service being worked on and every settled service gets its
// own line.
type progress struct {
	out     io.Writer
	spinner *spinner.Spinner
	done    chan struct{}
	wg      sync.WaitGroup
}

func startProgress(out io.Writer, registry *orchestrator.Registry, verb string) *progress {
	p := &progress{out: out, done: make(chan struct{})}
	events := registry.SubscribeToStateChanges()

	if !quiet {
		p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
		p.spinner.Suffix = fmt.Sprintf(" %s services...", verb)
		p.spinner.Start()
	}

	p.wg.Add(1)
	go p.run(events)
	return p
}

// run handles events until stop is called, then flushes whatever is still
// buffered so no settled service goes unreported.
func (p *progress) run(events <-chan orchestrator.ServiceStateChangedEvent) {
	defer p.wg.Done()
	for {
		select {
		case event := <-events:
			p.handle(event)
		case <-p.done:
			for {
				select {
				case event := <-events:
					p.handle(event)
				default:
					return
				}
			}
		}
	}
}

func (p *progress) handle(event orchestrator.ServiceStateChangedEvent) {
	if p.spinner == nil {
		return
	}

	if event.NewStatus.IsTransient() {
		p.spinner.Lock()
		p.spinner.Suffix = fmt.Sprintf(" %s %s...", event.NewStatus, event.Name)
		p.spinner.Unlock()
		return
	}
	p.println(settledLine(event))
}

func (p *progress) println(line string) {
	if p.spinner.Active() {
		p.spinner.Lock()
		defer p.spinner.Unlock()
		fmt.Fprintf(p.out, "\r\033[K%s\n", line)
		return
	}
	fmt.Fprintln(p.out, line)
}

// stop ends the progress display and prints the batch outcome.
func (p *progress) stop(err error) {
	close(p.done)
	p.wg.Wait()

	if p.spinner == nil {
		return
	}
	if err != nil {
		p.spinner.FinalMSG = text.FgRed.Sprintf("✗ %v\n", err)
	} else {
		p.spinner.FinalMSG = text.FgGreen.Sprint("✓ Done\n")
	}
	if p.spinner.Active() {
		p.spinner.Stop()
		return
	}
	fmt.Fprint(p.out, p.spinner.FinalMSG)
}

func settledLine(event orchestrator.ServiceStateChangedEvent) string {
	switch event.NewStatus {
	case api.StatusFailed:
		return text.FgRed.Sprintf("✗ %s failed: %v", event.Name, event.Error)
	case api.StatusNotInstalled:
		return text.FgHiBlack.Sprintf("- %s removed", event.Name)
	default:
		return text.FgGreen.Sprintf("✓ %s %s", event.Name, event.NewStatus)
	}
}
