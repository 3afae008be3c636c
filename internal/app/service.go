package app

import (
    "context"
    "errors"
    "sync"
    "time"

    "github.com/rs/zerolog"

    "github.com/jaminalder/negamax-tic-tac-toe/internal/domain"
    "github.com/jaminalder/negamax-tic-tac-toe/internal/negamax"
)

// Errors exposed by the service layer.
var (
    ErrNotFound    = errors.New("game not found")
    ErrNotYourTurn = errors.New("not your turn")
    ErrNotAPlayer  = errors.New("not a player")
    ErrBadSide     = errors.New("computer side must be X or O")
)

// GameState is the in-memory state tracked per game.
type GameState struct {
    ID       string
    Game     domain.Game
    X        string
    O        string
    Computer domain.Cell // Empty when both seats are human
    Created  time.Time
    Updated  time.Time
}

type subscriber struct {
    ch        chan []byte
    closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages games and subscribers.
type Service struct {
    mu     sync.Mutex
    games  map[string]*GameState
    subs   map[string]map[*subscriber]struct{}
    render func(GameState) []byte
    log    zerolog.Logger
}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService() *Service { return NewServiceWithRenderer(nil) }

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(GameState) []byte) *Service {
    if renderer == nil {
        renderer = func(gs GameState) []byte { return nil }
    }
    return &Service{
        games:  make(map[string]*GameState),
        subs:   make(map[string]map[*subscriber]struct{}),
        render: renderer,
        log:    zerolog.Nop(),
    }
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if renderer == nil {
        s.render = func(gs GameState) []byte { return nil }
        return
    }
    s.render = renderer
}

// SetLogger replaces the service logger.
func (s *Service) SetLogger(l zerolog.Logger) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.log = l
}

// Logger returns the service logger.
func (s *Service) Logger() zerolog.Logger {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.log
}

// CreateGame creates and registers a new game between two humans.
func (s *Service) CreateGame() (*GameState, error) {
    return s.create(domain.Empty)
}

// CreateAIGame creates a game with the solver seated on side. When the solver
// holds X it has already moved in the returned state.
func (s *Service) CreateAIGame(side domain.Cell) (*GameState, error) {
    if _, ok := side.Owner(); !ok {
        return nil, ErrBadSide
    }
    return s.create(side)
}

func (s *Service) create(computer domain.Cell) (*GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    id := newGameID()
    now := time.Now()
    gs := &GameState{ID: id, Game: domain.New(), Computer: computer, Created: now, Updated: now}
    switch computer {
    case domain.X:
        gs.X = ComputerID
    case domain.O:
        gs.O = ComputerID
    }
    s.games[id] = gs
    s.computerMoveLocked(gs)
    s.log.Info().Str("game", id).Bool("computer", computer != domain.Empty).Msg("game-created")
    cp := *gs
    return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return nil, false
    }
    cp := *gs
    return &cp, true
}

// Join assigns a seat to the player if available; returns Empty for spectators.
func (s *Service) Join(id, playerID string) (domain.Cell, *GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return domain.Empty, nil, ErrNotFound
    }
    side := domain.Empty
    if isComputer(playerID) {
        cp := *gs
        return side, &cp, nil
    }
    if gs.X == "" || gs.X == playerID {
        gs.X = playerID
        side = domain.X
    } else if gs.O == "" || gs.O == playerID {
        gs.O = playerID
        side = domain.O
    }
    gs.Updated = time.Now()
    cp := *gs
    return side, &cp, nil
}

// Play validates seat and turn, applies a move, lets the solver answer when
// it holds the next turn, and broadcasts the result.
func (s *Service) Play(id, playerID string, r, c int) (*GameState, error) {
    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    // Validate player is seated
    var seat domain.Cell
    switch {
    case isComputer(playerID):
        s.mu.Unlock()
        return nil, ErrNotAPlayer
    case gs.X == playerID:
        seat = domain.X
    case gs.O == playerID:
        seat = domain.O
    default:
        s.mu.Unlock()
        return nil, ErrNotAPlayer
    }
    if seat != gs.Game.Turn {
        s.mu.Unlock()
        return nil, ErrNotYourTurn
    }
    if err := gs.Game.Play(r, c); err != nil {
        s.mu.Unlock()
        return nil, err
    }
    s.computerMoveLocked(gs)
    gs.Updated = time.Now()
    if gs.Game.Over {
        s.log.Info().Str("game", id).Str("winner", cellName(gs.Game.Winner)).Int("moves", gs.Game.Moves).Msg("game-over")
    }

    cp := *gs
    s.publishLocked(id, s.render(cp))
    s.mu.Unlock()
    return &cp, nil
}

// computerMoveLocked plays the solver's move when it holds the turn. The
// search runs on a copy of the live board.
func (s *Service) computerMoveLocked(gs *GameState) {
    if gs.Computer == domain.Empty || gs.Game.Over || gs.Game.Turn != gs.Computer {
        return
    }
    start := time.Now()
    cell, ok := negamax.BestMove(gs.Game.Board, gs.Game.ToMove())
    if !ok {
        return
    }
    if err := gs.Game.Play(cell/3, cell%3); err != nil {
        s.log.Error().Err(err).Str("game", gs.ID).Int("cell", cell).Msg("ai-move-rejected")
        return
    }
    s.log.Debug().
        Str("game", gs.ID).
        Int("cell", cell).
        Str("board", gs.Game.Board.String()).
        Dur("took", time.Since(start)).
        Msg("ai-move")
}

// publishLocked fans a payload out; slow subscribers are closed and dropped.
// Sends happen under s.mu so they cannot race the close in unsubscribe,
// which removes the subscriber under s.mu before closing its channel.
func (s *Service) publishLocked(id string, payload []byte) {
    set := s.subs[id]
    dropped := 0
    for sub := range set {
        select {
        case sub.ch <- payload:
        default:
            delete(set, sub)
            sub.close()
            dropped++
        }
    }
    if dropped > 0 {
        s.log.Warn().Str("game", id).Int("dropped", dropped).Msg("drop-subscriber")
    }
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.games[id]; !ok {
        // create lazily to allow subscriptions before CreateGame in some flows
        s.games[id] = &GameState{ID: id, Game: domain.New(), Created: time.Now(), Updated: time.Now()}
    }
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    sub := &subscriber{ch: make(chan []byte, 1)}
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
            s.mu.Unlock()
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub
}

func cellName(c domain.Cell) string {
    switch c {
    case domain.X:
        return "X"
    case domain.O:
        return "O"
    default:
        return "draw"
    }
}
