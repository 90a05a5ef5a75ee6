package domain

import (
	"fmt"
	"strconv"
	"strings"
)

const seatIDPrefix = "user_"

type SeatCoordinate struct {
	Row  int
	Seat int
}

// ID returns the canonical seat identifier, e.g. "user_4_12".
func (c SeatCoordinate) ID() string {
	return seatIDPrefix + strconv.Itoa(c.Row) + "_" + strconv.Itoa(c.Seat)
}

func (c SeatCoordinate) Validate() error {
	if c.Row < 1 || c.Seat < 1 {
		return fmt.Errorf("%w: row=%d seat=%d", ErrInvalidCoordinate, c.Row, c.Seat)
	}

	return nil
}

func (c SeatCoordinate) String() string {
	return c.ID()
}

// ParseSeatID is the inverse of SeatCoordinate.ID.
func ParseSeatID(id string) (SeatCoordinate, error) {
	rest, ok := strings.CutPrefix(id, seatIDPrefix)
	if !ok {
		return SeatCoordinate{}, fmt.Errorf("%w: malformed seat id %q", ErrInvalidCoordinate, id)
	}

	parts := strings.Split(rest, "_")
	if len(parts) != 2 {
		return SeatCoordinate{}, fmt.Errorf("%w: malformed seat id %q", ErrInvalidCoordinate, id)
	}

	row, err := parsePositive(parts[0])
	if err != nil {
		return SeatCoordinate{}, fmt.Errorf("%w: seat id %q: %v", ErrInvalidCoordinate, id, err)
	}

	seat, err := parsePositive(parts[1])
	if err != nil {
		return SeatCoordinate{}, fmt.Errorf("%w: seat id %q: %v", ErrInvalidCoordinate, id, err)
	}

	return SeatCoordinate{Row: row, Seat: seat}, nil
}

func parsePositive(s string) (int, error) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, fmt.Errorf("bad number %q", s)
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("bad number %q", s)
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}

	if n < 1 {
		return 0, fmt.Errorf("non-positive number %d", n)
	}

	return n, nil
}

// SeatGrid covers rows [1, Rows] and seats [1, Seats].
type SeatGrid struct {
	Rows  int
	Seats int
}

func (g SeatGrid) Validate() error {
	if g.Rows < 1 || g.Seats < 1 {
		return fmt.Errorf("%w: empty grid %dx%d", ErrInvalidCoordinate, g.Rows, g.Seats)
	}

	return nil
}

func (g SeatGrid) Size() int {
	if g.Rows < 1 || g.Seats < 1 {
		return 0
	}

	return g.Rows * g.Seats
}

func (g SeatGrid) Contains(c SeatCoordinate) bool {
	return c.Row >= 1 && c.Row <= g.Rows && c.Seat >= 1 && c.Seat <= g.Seats
}

// Coordinates enumerates the grid row-major.
func (g SeatGrid) Coordinates() []SeatCoordinate {
	coords := make([]SeatCoordinate, 0, g.Size())
	for row := 1; row <= g.Rows; row++ {
		for seat := 1; seat <= g.Seats; seat++ {
			coords = append(coords, SeatCoordinate{Row: row, Seat: seat})
		}
	}

	return coords
}
