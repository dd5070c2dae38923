// Package input reads interval lists and query points from text sources.
//
// The format is one "start-end" interval per line, a single blank line,
// then one query point per line.
package input

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inodb/ivcover/internal/interval"
)

// Input holds the parsed contents of a source.
type Input struct {
	Intervals []interval.Interval
	Points    []uint64
}

// Parser reads intervals and query points from a text source.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
}

// NewParser creates a parser for the given file.
// Gzipped input is detected by its magic bytes. Use "-" for stdin.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input file: %w", err)
	}

	p := &Parser{file: file}
	br := bufio.NewReader(file)

	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = br
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) *Parser {
	return &Parser{reader: bufio.NewReader(r)}
}

// ReadAll reads the interval section and the points section.
func (p *Parser) ReadAll() (*Input, error) {
	in := &Input{}
	inPoints := false

	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read line %d: %w", p.lineNumber+1, err)
		}
		if line == "" && err == io.EOF {
			break
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			// The first blank line ends the intervals; later ones are ignored.
			inPoints = true
		} else if inPoints {
			point, perr := strconv.ParseUint(strings.TrimSpace(line), 10, 64)
			if perr != nil {
				return nil, &ParseError{Line: p.lineNumber, Message: fmt.Sprintf("invalid point: %s", line)}
			}
			in.Points = append(in.Points, point)
		} else {
			iv, perr := interval.Parse(line)
			if perr != nil {
				return nil, &ParseError{Line: p.lineNumber, Message: perr.Error(), Err: perr}
			}
			in.Intervals = append(in.Intervals, iv)
		}

		if err == io.EOF {
			break
		}
	}

	return in, nil
}

// LineNumber returns the number of lines consumed so far.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during input parsing with line context.
type ParseError struct {
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("input parse error at line %d: %s", e.Line, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
