// Package speech provides stand-ins for the audio collaborators. The real
// recognizer and synthesizer live outside this core; Console speaks the same
// contract over stdin/stdout.
package speech

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

type Console struct {
	in  *bufio.Reader
	out io.Writer
}

func NewConsole() *Console {
	return &Console{
		in:  bufio.NewReader(os.Stdin),
		out: os.Stdout,
	}
}

func NewConsoleWith(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// ListenOnce reads one line of input. io.EOF means the conversation is over.
func (c *Console) ListenOnce(ctx context.Context) (string, error) {
	fmt.Fprint(c.out, "You: ")
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) Speak(ctx context.Context, text string) error {
	_, err := fmt.Fprintln(c.out, "Assistant:", text)
	return err
}
