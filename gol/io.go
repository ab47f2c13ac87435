package gol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// maxCells bounds the board a header may announce.
const maxCells = 1 << 30

// ReadBoard parses a board file: the tokens height, width and generations, in
// that order, followed by height*width cells of 0 or 1 in row-major order.
func ReadBoard(r io.Reader) (Header, *Board, error) {
	var h Header
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	next := func(what string) (string, error) {
		if sc.Scan() {
			return sc.Text(), nil
		}
		if err := sc.Err(); err != nil {
			return "", fmt.Errorf("%w: reading %s: %v", ErrRead, what, err)
		}
		return "", fmt.Errorf("%w: unexpected end of input reading %s", ErrRead, what)
	}
	for _, field := range []struct {
		name string
		dst  *int
	}{
		{"height", &h.Height},
		{"width", &h.Width},
		{"generations", &h.Generations},
	} {
		tok, err := next(field.name)
		if err != nil {
			return Header{}, nil, err
		}
		n, err := strconv.Atoi(tok)
		if err != nil || n < 0 {
			return Header{}, nil, fmt.Errorf("%w: bad %s %q", ErrRead, field.name, tok)
		}
		*field.dst = n
	}

	if h.Width != 0 && h.Height > maxCells/h.Width {
		return Header{}, nil, fmt.Errorf("%w: %dx%d board is too large", ErrRead, h.Width, h.Height)
	}

	b := NewBoard(h.Width, h.Height)
	for i := range b.Cells {
		tok, err := next(fmt.Sprintf("cell %d of %d", i+1, len(b.Cells)))
		if err != nil {
			return Header{}, nil, err
		}
		switch tok {
		case "0":
		case "1":
			b.Cells[i] = true
		default:
			return Header{}, nil, fmt.Errorf("%w: bad cell %q at row %d column %d",
				ErrRead, tok, i/h.Width, i%h.Width)
		}
	}
	return h, b, nil
}

// WriteBoard writes the header line followed by one line per board row.
func WriteBoard(w io.Writer, h Header, b *Board) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d %d\n", h.Height, h.Width, h.Generations)
	bw.WriteString(b.String())
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
