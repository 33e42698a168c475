package scripting

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/dop251/goja"

	"github.com/RamaTeja99/Adobe-Hackathon-2025-Round-1A/outline"
)

// GojaEngine evaluates the accept() function from a rules script. The
// runtime is not reentrant, so calls serialize on a mutex.
type GojaEngine struct {
	mu     sync.Mutex
	vm     *goja.Runtime
	accept goja.Callable
}

// NewEngine compiles a rules script. The script must define a global
// function accept(entry).
func NewEngine(script string) (*GojaEngine, error) {
	vm := goja.New()
	if _, err := vm.RunString(script); err != nil {
		return nil, fmt.Errorf("compile rules: %w", err)
	}
	fn, ok := goja.AssertFunction(vm.Get("accept"))
	if !ok {
		return nil, fmt.Errorf("rules script does not define accept(entry)")
	}
	return &GojaEngine{vm: vm, accept: fn}, nil
}

// LoadFile reads and compiles a rules file.
func LoadFile(path string) (*GojaEngine, error) {
	script, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return NewEngine(string(script))
}

var levelRe = regexp.MustCompile(`^H[1-6]$`)

func (e *GojaEngine) Filter(ctx context.Context, entries []outline.Entry) ([]outline.Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()
	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	out := make([]outline.Entry, 0, len(entries))
	for _, entry := range entries {
		arg := e.vm.NewObject()
		if err := arg.Set("level", entry.Level); err != nil {
			return nil, err
		}
		if err := arg.Set("text", entry.Text); err != nil {
			return nil, err
		}
		if err := arg.Set("page", entry.Page); err != nil {
			return nil, err
		}

		val, err := e.accept(goja.Undefined(), arg)
		if err != nil {
			if interrupted, ok := err.(*goja.InterruptedError); ok {
				if cause, ok := interrupted.Value().(error); ok {
					return nil, cause
				}
				return nil, context.Canceled
			}
			return nil, fmt.Errorf("rules accept(): %w", err)
		}

		switch v := val.Export().(type) {
		case bool:
			if v {
				out = append(out, entry)
			}
		case string:
			if levelRe.MatchString(v) {
				entry.Level = v
				out = append(out, entry)
			}
		case nil:
			// undefined or null drops the entry
		default:
			out = append(out, entry)
		}
	}
	return out, nil
}
