// Package trace reads address traces.
//
// A trace is a text stream of whitespace-separated hexadecimal addresses,
// each optionally prefixed with 0x. Reading stops at the first token that is
// not a valid address, the same way a scanf("%lx") loop would.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
)

// A Reader yields the addresses of a trace in order.
type Reader struct {
	scanner   *bufio.Scanner
	count     uint64
	done      bool
	truncated bool
	badToken  string
}

// NewReader creates a Reader that reads from r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	return &Reader{scanner: scanner}
}

// Next returns the next address. It returns false once the trace is
// exhausted or a malformed token is met.
func (r *Reader) Next() (uint64, bool) {
	if r.done {
		return 0, false
	}

	if !r.scanner.Scan() {
		r.done = true
		return 0, false
	}

	token := r.scanner.Text()

	addr, rest, ok := parseHexPrefix(token)
	if !ok {
		r.stop(token)
		return 0, false
	}

	if rest != "" {
		r.stop(token)
	}

	r.count++

	return addr, true
}

func (r *Reader) stop(token string) {
	r.done = true
	r.truncated = true
	r.badToken = token
}

// Count returns the number of addresses returned so far.
func (r *Reader) Count() uint64 {
	return r.count
}

// Truncated returns true if reading stopped at a malformed token rather than
// at the end of the trace.
func (r *Reader) Truncated() bool {
	return r.truncated
}

// BadToken returns the token that stopped the reading, if any.
func (r *Reader) BadToken() string {
	return r.badToken
}

// Err returns the I/O error that ended the reading, if any.
func (r *Reader) Err() error {
	return r.scanner.Err()
}

// parseHexPrefix parses the longest hexadecimal prefix of token. rest is the
// part of the token after the prefix.
func parseHexPrefix(token string) (addr uint64, rest string, ok bool) {
	digits := token
	if len(digits) > 2 && digits[0] == '0' &&
		(digits[1] == 'x' || digits[1] == 'X') && isHexDigit(digits[2]) {
		digits = digits[2:]
	}

	end := 0
	for end < len(digits) && isHexDigit(digits[end]) {
		end++
	}

	if end == 0 {
		return 0, token, false
	}

	addr, err := strconv.ParseUint(digits[:end], 16, 64)
	if err != nil {
		return 0, token, false
	}

	return addr, digits[end:], true
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') ||
		('a' <= c && c <= 'f') ||
		('A' <= c && c <= 'F')
}

// A File is a Reader over a trace file.
type File struct {
	*Reader

	path string
	file *os.File
}

// Open opens the trace file at path. The error reads
// "failed to open <path>: <reason>".
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}

		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return &File{
		Reader: NewReader(f),
		path:   path,
		file:   f,
	}, nil
}

// Path returns the path of the file.
func (f *File) Path() string {
	return f.path
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.file.Close()
}
