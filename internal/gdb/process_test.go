package gdb

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeMI emulates the MI side of gdb over pipes. Each console command is
// answered from the table; unknown commands get an ^error record.
type fakeMI struct {
	answers map[string]string
	hang    map[string]bool
	stdinR  *io.PipeReader
	stdoutW *io.PipeWriter
}

func startFakeMI(t *testing.T, answers map[string]string) (*Process, *fakeMI) {
	t.Helper()

	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()

	f := &fakeMI{answers: answers, hang: map[string]bool{}, stdinR: stdinR, stdoutW: stdoutW}
	go f.serve()

	config := DefaultConfig()
	config.Timeout = 2 * time.Second
	config.StartupTimeout = 2 * time.Second

	p := newProcess(config, zap.NewNop(), stdinW, stdoutR)
	if err := p.handshake(context.Background()); err != nil {
		t.Fatalf("handshake failed: %v", err)
	}

	t.Cleanup(func() {
		_ = stdinW.Close()
		_ = stdoutW.Close()
	})
	return p, f
}

func (f *fakeMI) serve() {
	w := f.stdoutW
	fmt.Fprint(w, "=thread-group-added,id=\"i1\"\n(gdb) \n")

	scanner := bufio.NewScanner(f.stdinR)
	for scanner.Scan() {
		line := scanner.Text()
		i := 0
		for i < len(line) && line[i] >= '0' && line[i] <= '9' {
			i++
		}
		token, rest := line[:i], line[i:]

		switch {
		case rest == "-gdb-set confirm off":
			fmt.Fprintf(w, "%s^done\n(gdb) \n", token)
		case rest == "-gdb-exit":
			fmt.Fprintf(w, "%s^exit\n", token)
			_ = w.Close()
			return
		case strings.HasPrefix(rest, "-interpreter-exec console "):
			quoted := strings.TrimPrefix(rest, "-interpreter-exec console ")
			command := unquoteCString(quoted[1 : len(quoted)-1])
			if f.hang[command] {
				continue
			}
			out, ok := f.answers[command]
			if !ok {
				fmt.Fprintf(w, "&\"%s\\n\"\n%s^error,msg=\"Undefined command: \\\"%s\\\".\"\n(gdb) \n", command, token, command)
				continue
			}
			// Stale result from an earlier token must be ignored
			fmt.Fprint(w, "999^done\n")
			for _, l := range strings.SplitAfter(out, "\n") {
				if l == "" {
					continue
				}
				fmt.Fprintf(w, "~%s\n", quoteCString(l))
			}
			fmt.Fprintf(w, "%s^done\n(gdb) \n", token)
		default:
			fmt.Fprintf(w, "%s^error,msg=\"unexpected\"\n(gdb) \n", token)
		}
	}
}

func TestProcess_Execute(t *testing.T) {
	p, _ := startFakeMI(t, map[string]string{
		"info files":      infoFilesIA32,
		"show pagination": "State of pagination is on.\n",
	})

	out, err := p.Execute(context.Background(), "info files")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out != infoFilesIA32 {
		t.Errorf("Execute() output mismatch:\n got: %q\nwant: %q", out, infoFilesIA32)
	}

	out, err = p.Execute(context.Background(), "show pagination")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	state, _ := NewParser().ParsePagination(out)
	if state != "on" {
		t.Errorf("pagination = %q, want on", state)
	}
}

func TestProcess_CommandError(t *testing.T) {
	p, _ := startFakeMI(t, map[string]string{})

	_, err := p.Execute(context.Background(), "frobnicate")
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("expected CommandError, got %T: %v", err, err)
	}
	if cmdErr.Command != "frobnicate" {
		t.Errorf("Command = %q", cmdErr.Command)
	}
	if !strings.Contains(cmdErr.Message, `Undefined command: "frobnicate"`) {
		t.Errorf("Message = %q", cmdErr.Message)
	}
}

func TestProcess_Timeout(t *testing.T) {
	p, f := startFakeMI(t, map[string]string{"target remote :1234": ""})
	f.hang["target remote :1234"] = true

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Execute(ctx, "target remote :1234")
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
}

func TestProcess_ExitedGDB(t *testing.T) {
	p, f := startFakeMI(t, map[string]string{})
	_ = f.stdoutW.Close()

	_, err := p.Execute(context.Background(), "info files")
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionError, got %T: %v", err, err)
	}
}

func TestProcess_Close(t *testing.T) {
	p, _ := startFakeMI(t, map[string]string{})
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
