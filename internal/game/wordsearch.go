package game

import "math/rand"

// maxPlacementAttempts bounds the randomized position search per word.
const maxPlacementAttempts = 100

var gridDirections = [][2]int{
	{0, 1},  // across
	{1, 0},  // down
	{1, 1},  // diagonal down-right
	{1, -1}, // diagonal down-left
}

// Placement records where a word landed on the grid.
type Placement struct {
	Word     string `json:"word"`
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	DeltaRow int    `json:"deltaRow"`
	DeltaCol int    `json:"deltaCol"`
}

// GridResult is the outcome of building a word-search board. Words that
// could not be placed within the attempt bound are reported in Unplaced
// rather than silently dropped, so callers always know whether the board
// carries fewer words than requested.
type GridResult struct {
	Grid     [][]rune    `json:"grid"`
	Placed   []Placement `json:"placed"`
	Unplaced []string    `json:"unplaced"`
}

// BuildGrid places words on a size x size board via bounded random
// retries, then fills the gaps with letters drawn from the words
// themselves so the filler matches the words' alphabet. Overlaps are
// allowed where the letters agree.
func BuildGrid(words []string, size int, rnd *rand.Rand) GridResult {
	grid := make([][]rune, size)
	for i := range grid {
		grid[i] = make([]rune, size)
	}

	result := GridResult{Grid: grid, Placed: []Placement{}, Unplaced: []string{}}
	for _, word := range words {
		letters := []rune(word)
		if len(letters) == 0 || len(letters) > size {
			result.Unplaced = append(result.Unplaced, word)
			continue
		}

		placed := false
		for attempt := 0; attempt < maxPlacementAttempts && !placed; attempt++ {
			dir := gridDirections[rnd.Intn(len(gridDirections))]
			row := rnd.Intn(size)
			col := rnd.Intn(size)
			if !fits(grid, letters, row, col, dir[0], dir[1]) {
				continue
			}
			for i, letter := range letters {
				grid[row+i*dir[0]][col+i*dir[1]] = letter
			}
			result.Placed = append(result.Placed, Placement{
				Word: word, Row: row, Col: col, DeltaRow: dir[0], DeltaCol: dir[1],
			})
			placed = true
		}
		if !placed {
			result.Unplaced = append(result.Unplaced, word)
		}
	}

	fillGaps(grid, words, rnd)
	return result
}

func fits(grid [][]rune, letters []rune, row, col, dRow, dCol int) bool {
	size := len(grid)
	endRow := row + (len(letters)-1)*dRow
	endCol := col + (len(letters)-1)*dCol
	if endRow < 0 || endRow >= size || endCol < 0 || endCol >= size {
		return false
	}
	for i, letter := range letters {
		cell := grid[row+i*dRow][col+i*dCol]
		if cell != 0 && cell != letter {
			return false
		}
	}
	return true
}

func fillGaps(grid [][]rune, words []string, rnd *rand.Rand) {
	var alphabet []rune
	seen := map[rune]bool{}
	for _, word := range words {
		for _, letter := range word {
			if !seen[letter] {
				seen[letter] = true
				alphabet = append(alphabet, letter)
			}
		}
	}
	if len(alphabet) == 0 {
		alphabet = []rune{'א'}
	}
	for i := range grid {
		for j := range grid[i] {
			if grid[i][j] == 0 {
				grid[i][j] = alphabet[rnd.Intn(len(alphabet))]
			}
		}
	}
}
