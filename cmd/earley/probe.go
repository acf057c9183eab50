package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/dhamidi/earley/earley"
	"github.com/dhamidi/earley/format"
)

var errQuit = errors.New("quit")

// lineReader yields input lines without their line terminator.
type lineReader interface {
	ReadLine() (string, error)
	Close() error
}

type directReader struct {
	r *bufio.Reader
}

func newDirectReader(r io.Reader) *directReader {
	return &directReader{r: bufio.NewReader(r)}
}

func (d *directReader) ReadLine() (string, error) {
	line, err := d.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (d *directReader) Close() error {
	return nil
}

type interactiveReader struct {
	rl *readline.Instance
}

func newInteractiveReader(prompt string) (*interactiveReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("create readline config: %w", err)
	}
	return &interactiveReader{rl: rl}, nil
}

func (i *interactiveReader) ReadLine() (string, error) {
	line, err := i.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", io.EOF
	}
	return line, err
}

func (i *interactiveReader) Close() error {
	return i.rl.Close()
}

// session is one probe conversation with a parser. Plain lines are split at
// white space and extended as one all-or-nothing step; lines starting with
// a colon are commands.
type session struct {
	p    *earley.Parser
	out  io.Writer
	undo []int
}

const probeHelp = `tokens...   extend the parser, all or nothing
:chart      print the chart
:raw        print the plain chart dump
:undo       take back the last accepted line
:reset      start over
:complete   report whether the input is a sentence
:expected   list the terminals that may follow
:tokens     list the accepted tokens
:quit       leave
`

func (s *session) run(in lineReader) error {
	for {
		line, err := in.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.handle(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			return err
		}
	}
}

func (s *session) handle(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	switch line {
	case ":quit", ":q":
		return errQuit
	case ":help", ":h":
		fmt.Fprint(s.out, probeHelp)
	case ":chart":
		format.WriteChart(s.out, s.p.Chart())
	case ":raw":
		fmt.Fprint(s.out, s.p)
	case ":undo":
		if len(s.undo) == 0 {
			fmt.Fprintln(s.out, "nothing to undo")
			return nil
		}
		n := s.undo[len(s.undo)-1]
		s.undo = s.undo[:len(s.undo)-1]
		s.p.Rewind(n)
		fmt.Fprintf(s.out, "undone %d\n", n)
	case ":reset":
		s.p.Reset()
		s.undo = s.undo[:0]
		fmt.Fprintln(s.out, "reset")
	case ":complete":
		fmt.Fprintln(s.out, s.p.Complete())
	case ":expected":
		fmt.Fprintln(s.out, expected(s.p))
	case ":tokens":
		fmt.Fprintln(s.out, strings.Join(s.p.Tokens(), " "))
	default:
		if strings.HasPrefix(line, ":") {
			fmt.Fprintf(s.out, "unknown command %s, try :help\n", line)
			return nil
		}
		return s.extend(strings.Fields(line))
	}
	return nil
}

func (s *session) extend(tokens []string) error {
	ok, err := s.p.Extend(tokens...)
	if err != nil {
		fmt.Fprintf(s.out, "error: %s\n", err)
		return nil
	}
	if !ok {
		fmt.Fprintln(s.out, "reject")
		return nil
	}
	s.undo = append(s.undo, len(tokens))
	if s.p.Complete() {
		fmt.Fprintln(s.out, "accept (complete)")
	} else {
		fmt.Fprintln(s.out, "accept")
	}
	return nil
}
