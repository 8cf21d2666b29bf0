package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// exitWords end every REPL.
var exitWords = map[string]bool{
	"quit": true,
	"exit": true,
	"bye":  true,
	"退出":   true,
	"再见":   true,
}

func isExitWord(s string) bool {
	return exitWords[strings.ToLower(strings.TrimSpace(s))]
}

// prompter reads trimmed lines after printing a prompt. Reads stop when ctx
// is cancelled so Ctrl-C ends a REPL waiting for input.
type prompter struct {
	out   io.Writer
	lines chan string
}

func newPrompter(ctx context.Context, in io.Reader, out io.Writer) *prompter {
	p := &prompter{out: out, lines: make(chan string)}
	go func() {
		defer close(p.lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case p.lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()
	return p
}

// next returns the next line, or false on end of input or cancellation.
func (p *prompter) next(ctx context.Context, prompt string) (string, bool) {
	fmt.Fprint(p.out, prompt)
	select {
	case line, ok := <-p.lines:
		return line, ok
	case <-ctx.Done():
		return "", false
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
