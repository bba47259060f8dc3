package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// passwordReader reads one password per call. Terminals get no-echo input;
// pipes and files are read line by line.
type passwordReader struct {
	file  *os.File
	lines *bufio.Reader
}

func newPasswordReader(file *os.File) *passwordReader {
	return &passwordReader{file: file, lines: bufio.NewReader(file)}
}

func (reader *passwordReader) Read() (string, error) {
	if reader.file == nil {
		return "", errors.New("stdin unavailable")
	}

	fd := int(reader.file.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	line, err := reader.lines.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if line == "" && errors.Is(err, io.EOF) {
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimRight(line, "\r\n"), nil
}
