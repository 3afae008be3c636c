// Package negamax solves 3x3 tic-tac-toe positions by exhaustive search.
//
// The tree is at most 9 plies deep, so there is no pruning, no transposition
// table and no depth limit. All functions work on a board snapshot owned by
// the caller; concurrent callers must pass independent copies.
package negamax

import "github.com/jaminalder/negamax-tic-tac-toe/internal/domain"

// Game values from the mover's point of view; a loss is -WinScore.
const (
    WinScore  = 10
    DrawScore = 0
)

// MoveScore is the value of playing Cell, from the mover's point of view.
type MoveScore struct {
    Cell  int
    Score int
}

// Score returns the value of b for toMove: +10 won, -10 lost, 0 drawn under
// perfect play. b is mutated during the search and restored before return.
func Score(b *domain.Board, toMove domain.Player) int {
    if p, ok := domain.Winner(*b); ok {
        if p == toMove {
            return WinScore
        }
        return -WinScore
    }
    if domain.IsFull(*b) {
        return DrawScore
    }

    best := -WinScore - 1
    mark := toMove.Mark()
    for i, c := range b {
        if c != domain.Empty {
            continue
        }
        b[i] = mark
        s := -Score(b, toMove.Opponent())
        b[i] = domain.Empty
        if s > best {
            best = s
        }
    }
    return best
}

// Analyze scores every legal move for ai in ascending cell order.
func Analyze(b domain.Board, ai domain.Player) []MoveScore {
    out := make([]MoveScore, 0, 9)
    mark := ai.Mark()
    for i, c := range b {
        if c != domain.Empty {
            continue
        }
        b[i] = mark
        out = append(out, MoveScore{Cell: i, Score: -Score(&b, ai.Opponent())})
        b[i] = domain.Empty
    }
    return out
}

// BestMove returns the optimal cell for ai; the lowest index wins ties.
// ok is false when the board has no empty cell.
func BestMove(b domain.Board, ai domain.Player) (cell int, ok bool) {
    best, ok := Pick(Analyze(b, ai))
    return best.Cell, ok
}

// Pick returns the first entry with the highest score.
func Pick(scores []MoveScore) (MoveScore, bool) {
    if len(scores) == 0 {
        return MoveScore{Cell: -1}, false
    }
    best := scores[0]
    for _, ms := range scores[1:] {
        if ms.Score > best.Score {
            best = ms
        }
    }
    return best, true
}
