package templates

import "mahjong-realm/models"

// Tiles sit on a half-tile grid: neighbours in a row are two columns apart
// and neighbouring rows are two rows apart. Odd cells straddle two tiles.

type shape struct {
	name   string
	levels [][][]uint8
}

func newShape(name string, levels, rows, cols int) *shape {
	s := &shape{name: name, levels: make([][][]uint8, levels)}
	for l := range s.levels {
		s.levels[l] = make([][]uint8, rows)
		for r := range s.levels[l] {
			s.levels[l][r] = make([]uint8, cols)
		}
	}
	return s
}

func (s *shape) set(level, row, col int) *shape {
	s.levels[level][row][col] = 1
	return s
}

// rowSpan fills every second column of row from c0 to c1 inclusive.
func (s *shape) rowSpan(level, row, c0, c1 int) *shape {
	for c := c0; c <= c1; c += 2 {
		s.set(level, row, c)
	}
	return s
}

// colSpan fills every second row of col from r0 to r1 inclusive.
func (s *shape) colSpan(level, col, r0, r1 int) *shape {
	for r := r0; r <= r1; r += 2 {
		s.set(level, r, col)
	}
	return s
}

func (s *shape) block(level, r0, r1, c0, c1 int) *shape {
	for r := r0; r <= r1; r += 2 {
		s.rowSpan(level, r, c0, c1)
	}
	return s
}

func (s *shape) template() models.BoardTemplate {
	return models.BoardTemplate{Name: s.name, Levels: s.levels}
}

// Pair is the smallest playable board: two touching tiles.
func Pair() models.BoardTemplate {
	return models.BoardTemplate{Name: "pair", Levels: [][][]uint8{{{1, 1}}}}
}

func Square() models.BoardTemplate {
	return newShape("square", 2, 7, 7).
		block(0, 0, 6, 0, 6).
		block(1, 2, 4, 2, 4).
		template()
}

func WizardHat() models.BoardTemplate {
	return newShape("wizard_hat", 3, 7, 13).
		set(0, 0, 6).
		rowSpan(0, 2, 4, 8).
		rowSpan(0, 4, 2, 10).
		rowSpan(0, 6, 0, 12).
		rowSpan(1, 4, 4, 8).
		rowSpan(1, 6, 2, 10).
		set(2, 4, 6).
		set(2, 6, 6).
		template()
}

func EasyMonument() models.BoardTemplate {
	return newShape("easy_monument", 3, 5, 11).
		block(0, 0, 4, 0, 10).
		block(1, 0, 4, 2, 8).
		rowSpan(2, 2, 4, 6).
		template()
}

func Sword() models.BoardTemplate {
	return newShape("sword", 2, 21, 9).
		colSpan(0, 4, 0, 12).
		rowSpan(0, 14, 0, 8).
		colSpan(0, 4, 16, 18).
		rowSpan(0, 20, 2, 6).
		colSpan(1, 4, 4, 8).
		template()
}

func Ziggurats() models.BoardTemplate {
	s := newShape("ziggurats", 3, 7, 17)
	for _, c0 := range []int{0, 10} {
		s.block(0, 0, 6, c0, c0+6).
			block(1, 2, 4, c0+2, c0+4).
			set(2, 3, c0+3)
	}
	return s.template()
}

func Flowers() models.BoardTemplate {
	return newShape("flowers", 2, 11, 11).
		block(0, 0, 2, 4, 6).
		block(0, 4, 6, 0, 2).
		block(0, 4, 6, 4, 6).
		block(0, 4, 6, 8, 10).
		block(0, 8, 10, 4, 6).
		set(1, 1, 5).
		set(1, 5, 1).
		set(1, 5, 9).
		set(1, 9, 5).
		template()
}

func Turtle() models.BoardTemplate {
	return newShape("turtle", 5, 15, 27).
		rowSpan(0, 0, 2, 22).
		rowSpan(0, 2, 6, 18).
		rowSpan(0, 4, 4, 20).
		rowSpan(0, 6, 2, 22).
		rowSpan(0, 8, 2, 22).
		rowSpan(0, 10, 4, 20).
		rowSpan(0, 12, 6, 18).
		rowSpan(0, 14, 2, 22).
		set(0, 7, 0).
		set(0, 7, 24).
		set(0, 7, 26).
		block(1, 2, 12, 8, 18).
		block(2, 4, 10, 10, 16).
		block(3, 6, 8, 12, 14).
		set(4, 7, 13).
		template()
}

func Candle() models.BoardTemplate {
	return newShape("candle", 3, 19, 9).
		set(0, 0, 4).
		set(0, 2, 4).
		block(0, 4, 16, 2, 6).
		rowSpan(0, 18, 0, 8).
		colSpan(1, 4, 6, 14).
		set(2, 10, 4).
		template()
}

// Builtin returns the shapes shipped with the server, in menu order.
func Builtin() []models.BoardTemplate {
	return []models.BoardTemplate{
		WizardHat(),
		EasyMonument(),
		Square(),
		Sword(),
		Ziggurats(),
		Flowers(),
		Turtle(),
		Candle(),
		Pair(),
	}
}
