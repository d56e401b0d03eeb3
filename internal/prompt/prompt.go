// Package prompt reads interactive input for the command-line tools.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Password writes label to out and reads a password from in without echo
// when in is a terminal. Otherwise it reads one line, which is what pipes
// and tests provide.
func Password(in io.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := Line(in)
	fmt.Fprintln(out)
	return line, err
}

// Line reads a single line from in, without the trailing newline.
func Line(in io.Reader) (string, error) {
	r, ok := in.(*bufio.Reader)
	if !ok {
		r = bufio.NewReader(in)
	}

	line, err := r.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
