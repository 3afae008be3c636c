package domain

import (
    "errors"
    "fmt"
    "strings"
)

// ErrBadState is returned for malformed state strings and player names.
var ErrBadState = errors.New("bad state")

// String encodes the board as 9 characters, row-major:
// '0' empty, '1' player 0 (X), '2' player 1 (O).
func (b Board) String() string {
    var sb strings.Builder
    sb.Grow(len(b))
    for _, c := range b {
        switch c {
        case X:
            sb.WriteByte('1')
        case O:
            sb.WriteByte('2')
        default:
            sb.WriteByte('0')
        }
    }
    return sb.String()
}

// ParseBoard decodes a state string produced by Board.String.
func ParseBoard(s string) (Board, error) {
    var b Board
    if len(s) != len(b) {
        return b, fmt.Errorf("%w: want %d cells, got %d", ErrBadState, len(b), len(s))
    }
    for i := 0; i < len(s); i++ {
        switch s[i] {
        case '0':
            b[i] = Empty
        case '1':
            b[i] = X
        case '2':
            b[i] = O
        default:
            return Board{}, fmt.Errorf("%w: cell %d is %q", ErrBadState, i, s[i])
        }
    }
    return b, nil
}

// ParsePlayer accepts "0", "1", "x" or "o" in any case.
func ParsePlayer(s string) (Player, error) {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "0", "x":
        return PlayerX, nil
    case "1", "o":
        return PlayerO, nil
    }
    return 0, fmt.Errorf("%w: unknown player %q", ErrBadState, s)
}
