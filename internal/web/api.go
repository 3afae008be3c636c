package web

import (
    "encoding/json"
    "net/http"

    "github.com/jaminalder/negamax-tic-tac-toe/internal/domain"
    "github.com/jaminalder/negamax-tic-tac-toe/internal/negamax"
)

type moveScoreDTO struct {
    Cell  int `json:"cell"`
    Row   int `json:"row"`
    Col   int `json:"col"`
    Score int `json:"score"`
}

type solveResponse struct {
    State  string         `json:"state"`
    Player string         `json:"player"`
    Winner *string        `json:"winner"`
    Full   bool           `json:"full"`
    Move   *moveScoreDTO  `json:"move"`
    Moves  []moveScoreDTO `json:"moves"`
}

// solve answers GET /api/solve?state=100020000&player=1 with the optimal
// move for player and the value of every legal move.
func (h *handlers) solve(w http.ResponseWriter, r *http.Request) {
    q := r.URL.Query()
    b, err := domain.ParseBoard(q.Get("state"))
    if err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
        return
    }
    playerArg := q.Get("player")
    if playerArg == "" {
        playerArg = "1"
    }
    p, err := domain.ParsePlayer(playerArg)
    if err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
        return
    }

    resp := solveResponse{State: b.String(), Player: p.String(), Full: domain.IsFull(b), Moves: []moveScoreDTO{}}
    if winner, ok := domain.Winner(b); ok {
        name := winner.String()
        resp.Winner = &name
    }
    scores := negamax.Analyze(b, p)
    for _, ms := range scores {
        resp.Moves = append(resp.Moves, toMoveDTO(ms))
    }
    if best, ok := negamax.Pick(scores); ok {
        dto := toMoveDTO(best)
        resp.Move = &dto
    }
    writeJSON(w, http.StatusOK, resp)
}

func toMoveDTO(ms negamax.MoveScore) moveScoreDTO {
    return moveScoreDTO{Cell: ms.Cell, Row: ms.Cell / 3, Col: ms.Cell % 3, Score: ms.Score}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}
