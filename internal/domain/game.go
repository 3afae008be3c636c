package domain

import "errors"

// Cell represents a board cell state.
type Cell uint8

const (
    Empty Cell = iota
    X
    O
)

// Owner maps an occupied cell to the player holding it.
func (c Cell) Owner() (Player, bool) {
    switch c {
    case X:
        return PlayerX, true
    case O:
        return PlayerO, true
    default:
        return 0, false
    }
}

func (c Cell) String() string {
    switch c {
    case X:
        return "X"
    case O:
        return "O"
    default:
        return "_"
    }
}

// Player identifies one of the two participants. PlayerX is player 0.
type Player uint8

const (
    PlayerX Player = iota
    PlayerO
)

// Opponent returns the other player.
func (p Player) Opponent() Player {
    if p == PlayerX {
        return PlayerO
    }
    return PlayerX
}

// Mark returns the cell value placed by p.
func (p Player) Mark() Cell {
    if p == PlayerX {
        return X
    }
    return O
}

func (p Player) String() string {
    if p == PlayerX {
        return "X"
    }
    return "O"
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// Lines are the winning triples: rows, then columns, then diagonals.
var Lines = [8][3]int{
    // rows
    {0, 1, 2}, {3, 4, 5}, {6, 7, 8},
    // cols
    {0, 3, 6}, {1, 4, 7}, {2, 5, 8},
    // diags
    {0, 4, 8}, {2, 4, 6},
}

// Winner returns the owner of the first fully owned line, if any.
func Winner(b Board) (Player, bool) {
    for _, ln := range Lines {
        p, ok := b[ln[0]].Owner()
        if ok && b[ln[1]] == b[ln[0]] && b[ln[2]] == b[ln[0]] {
            return p, true
        }
    }
    return 0, false
}

// IsFull reports whether no cell is Empty. It does not look for a winner.
func IsFull(b Board) bool {
    for _, c := range b {
        if c == Empty {
            return false
        }
    }
    return true
}

// EmptyCells lists the legal move indices in ascending order.
func (b Board) EmptyCells() []int {
    out := make([]int, 0, len(b))
    for i, c := range b {
        if c == Empty {
            out = append(out, i)
        }
    }
    return out
}

// Game holds the current state of a Tic-Tac-Toe match.
type Game struct {
    Board  Board
    Turn   Cell
    Winner Cell
    Over   bool
    Moves  int
}

// Errors returned by domain operations.
var (
    ErrOutOfBounds = errors.New("out of bounds")
    ErrOccupied    = errors.New("cell occupied")
    ErrGameOver    = errors.New("game over")
)

// New returns a new game with X to move.
func New() Game {
    return Game{Turn: X}
}

// Play attempts to play the current turn at row r, column c (0..2).
func (g *Game) Play(r, c int) error {
    if g.Over {
        return ErrGameOver
    }
    if r < 0 || r > 2 || c < 0 || c > 2 {
        return ErrOutOfBounds
    }
    idx := r*3 + c
    if g.Board[idx] != Empty {
        return ErrOccupied
    }

    g.Board[idx] = g.Turn
    g.Moves++

    // Win is checked before fullness so a full, won board is not a draw.
    if p, ok := Winner(g.Board); ok {
        g.Winner = p.Mark()
        g.Over = true
        return nil
    }
    if IsFull(g.Board) {
        g.Winner = Empty
        g.Over = true
        return nil
    }

    if g.Turn == X {
        g.Turn = O
    } else {
        g.Turn = X
    }
    return nil
}

// ToMove returns the player whose turn it is.
func (g Game) ToMove() Player {
    p, _ := g.Turn.Owner()
    return p
}
