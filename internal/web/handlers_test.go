package web

import (
    "encoding/json"
    "io"
    "net/http"
    "net/http/httptest"
    "net/url"
    "strings"
    "testing"
    "time"

    "github.com/gorilla/websocket"

    "github.com/jaminalder/negamax-tic-tac-toe/internal/app"
    "github.com/jaminalder/negamax-tic-tac-toe/internal/domain"
)

func newTestServer(t *testing.T) (*app.Service, http.Handler) {
    t.Helper()
    s := app.NewService()
    h := NewServer(s)
    return s, h
}

func TestIndexPage(t *testing.T) {
    _, h := newTestServer(t)
    req := httptest.NewRequest("GET", "/", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    body := rr.Body.String()
    if !strings.Contains(body, "<form") || !strings.Contains(body, "action=\"/game\"") {
        t.Fatalf("index should contain create form; got body: %q", body)
    }
    if !strings.Contains(body, "name=\"ai\"") {
        t.Fatalf("index should offer a computer opponent; got body: %q", body)
    }
}

func TestCreateRedirectsToGame(t *testing.T) {
    _, h := newTestServer(t)
    req := httptest.NewRequest("POST", "/game", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusSeeOther && rr.Code != http.StatusFound {
        t.Fatalf("expected redirect, got %d", rr.Code)
    }
    loc := rr.Result().Header.Get("Location")
    if !strings.HasPrefix(loc, "/game/") {
        t.Fatalf("expected redirect to /game/{id}, got %q", loc)
    }
}

func TestGamePageSetsCookieAndAutoClaims(t *testing.T) {
    svc, h := newTestServer(t)
    // Create a game via service to know ID
    gs, _ := svc.CreateGame()

    req := httptest.NewRequest("GET", "/game/"+url.PathEscape(gs.ID), nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    // Cookie set
    cookies := rr.Result().Cookies()
    var playerID string
    for _, c := range cookies {
        if c.Name == "player_id" {
            playerID = c.Value
            break
        }
    }
    if playerID == "" {
        t.Fatalf("expected player_id cookie to be set")
    }
    // Auto-claimed seat
    latest, ok := svc.Get(gs.ID)
    if !ok || (latest.X != playerID && latest.O != playerID) {
        t.Fatalf("expected auto-claim X or O; have X=%q O=%q pid=%q", latest.X, latest.O, playerID)
    }
    // SSE wiring present
    body := rr.Body.String()
    if !strings.Contains(body, "hx-ext=\"sse\"") || !strings.Contains(body, "/game/"+gs.ID+"/events") {
        t.Fatalf("expected SSE wiring in page; got body: %q", body)
    }
}

func TestJoinEndpointReturnsBoardFragment(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame()
    // First GET to auto-claim X for p1
    req1 := httptest.NewRequest("GET", "/game/"+gs.ID, nil)
    rr1 := httptest.NewRecorder()
    h.ServeHTTP(rr1, req1)
    // Extract cookie for second player
    p2 := &http.Cookie{Name: "player_id", Value: "p2"}
    form := url.Values{}
    req := httptest.NewRequest("POST", "/game/"+gs.ID+"/join", strings.NewReader(form.Encode()))
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
    req.AddCookie(p2)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    if !strings.Contains(rr.Body.String(), "id=\"board\"") {
        t.Fatalf("expected board fragment, got %q", rr.Body.String())
    }
    latest, _ := svc.Get(gs.ID)
    if latest.O != "p2" && latest.X != "p2" { // allow if X was free
        t.Fatalf("expected seat for p2, got X=%q O=%q", latest.X, latest.O)
    }
}

func TestPlayEndpointUpdatesStateAndReturnsFragment(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame()
    // Assign X and O
    svc.Join(gs.ID, "p1")
    svc.Join(gs.ID, "p2")

    form := url.Values{"r": {"0"}, "c": {"0"}, "side": {"X"}}
    req := httptest.NewRequest("POST", "/game/"+gs.ID+"/play", strings.NewReader(form.Encode()))
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
    req.AddCookie(&http.Cookie{Name: "player_id", Value: "p1"})
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    if !strings.Contains(rr.Body.String(), "id=\"board\"") {
        t.Fatalf("expected board fragment, got %q", rr.Body.String())
    }
    latest, _ := svc.Get(gs.ID)
    if latest.Game.Moves != 1 {
        t.Fatalf("expected move applied, moves=%d", latest.Game.Moves)
    }
}

func TestEventsEndpointSSEHeaders(t *testing.T) {
    _, h := newTestServer(t)
    // create a game via POST
    reqCreate := httptest.NewRequest("POST", "/game", nil)
    rrCreate := httptest.NewRecorder()
    h.ServeHTTP(rrCreate, reqCreate)
    loc := rrCreate.Result().Header.Get("Location")
    if loc == "" {
        t.Fatalf("missing redirect location")
    }
    // Request SSE
    req := httptest.NewRequest("GET", loc+"/events", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", rr.Code)
    }
    ct := rr.Result().Header.Get("Content-Type")
    if !strings.HasPrefix(ct, "text/event-stream") {
        io.Copy(io.Discard, rr.Result().Body)
        t.Fatalf("expected text/event-stream, got %q", ct)
    }
}


func TestCreateComputerGame(t *testing.T) {
    svc, h := newTestServer(t)
    form := url.Values{"ai": {"X"}}
    req := httptest.NewRequest("POST", "/game", strings.NewReader(form.Encode()))
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusSeeOther {
        t.Fatalf("expected redirect, got %d", rr.Code)
    }
    id := strings.TrimPrefix(rr.Result().Header.Get("Location"), "/game/")
    gs, ok := svc.Get(id)
    if !ok || gs.X != app.ComputerID || gs.Game.Moves != 1 {
        t.Fatalf("expected computer on X with its opening played, got %+v", gs)
    }

    bad := httptest.NewRequest("POST", "/game", strings.NewReader("ai=Z"))
    bad.Header.Set("Content-Type", "application/x-www-form-urlencoded")
    rr = httptest.NewRecorder()
    h.ServeHTTP(rr, bad)
    if rr.Code != http.StatusBadRequest {
        t.Fatalf("expected 400 for unknown side, got %d", rr.Code)
    }
}

func TestPlayEndpointReportsErrors(t *testing.T) {
    svc, h := newTestServer(t)
    gs, _ := svc.CreateGame()
    svc.Join(gs.ID, "p1")
    svc.Join(gs.ID, "p2")

    form := url.Values{"r": {"0"}, "c": {"0"}}
    req := httptest.NewRequest("POST", "/game/"+gs.ID+"/play", strings.NewReader(form.Encode()))
    req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
    req.AddCookie(&http.Cookie{Name: "player_id", Value: "p2"})
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if !strings.Contains(rr.Body.String(), "Not your turn") {
        t.Fatalf("expected turn error in fragment, got %q", rr.Body.String())
    }
}

func TestSolveEndpoint(t *testing.T) {
    _, h := newTestServer(t)
    req := httptest.NewRequest("GET", "/api/solve?state=110020000&player=o", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
    }
    var resp solveResponse
    if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
        t.Fatalf("decode: %v", err)
    }
    if resp.Move == nil || resp.Move.Cell != 2 || resp.Move.Row != 0 || resp.Move.Col != 2 {
        t.Fatalf("expected block on cell 2, got %+v", resp.Move)
    }
    if len(resp.Moves) != 6 || resp.Winner != nil || resp.Full {
        t.Fatalf("unexpected response %+v", resp)
    }
}

func TestSolveEndpointFullBoardHasNoMove(t *testing.T) {
    _, h := newTestServer(t)
    req := httptest.NewRequest("GET", "/api/solve?state=121122211", nil)
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    body := rr.Body.String()
    if rr.Code != http.StatusOK || !strings.Contains(body, `"move":null`) || !strings.Contains(body, `"full":true`) {
        t.Fatalf("expected null move on full board, got %d %s", rr.Code, body)
    }
}

func TestSolveEndpointRejectsMalformedInput(t *testing.T) {
    _, h := newTestServer(t)
    for _, q := range []string{"state=12", "state=000000009", "state=000000000&player=2"} {
        req := httptest.NewRequest("GET", "/api/solve?"+q, nil)
        rr := httptest.NewRecorder()
        h.ServeHTTP(rr, req)
        if rr.Code != http.StatusBadRequest {
            t.Fatalf("%s: expected 400, got %d", q, rr.Code)
        }
    }
}

func TestWebsocketStreamsBoardUpdates(t *testing.T) {
    svc := app.NewService()
    srv := httptest.NewServer(NewServerWithOptions(svc, Options{Heartbeat: time.Hour}))
    defer srv.Close()
    gs, _ := svc.CreateGame()
    svc.Join(gs.ID, "p1")
    svc.Join(gs.ID, "p2")

    wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + gs.ID + "/ws"
    conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
    if err != nil {
        t.Fatalf("dial: %v", err)
    }
    defer conn.Close()
    _ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

    var msg wsMessage
    if err := conn.ReadJSON(&msg); err != nil || msg.Type != "board" {
        t.Fatalf("expected initial board, got %+v err=%v", msg, err)
    }
    if _, err := svc.Play(gs.ID, "p1", 1, 1); err != nil {
        t.Fatalf("play: %v", err)
    }
    if err := conn.ReadJSON(&msg); err != nil {
        t.Fatalf("read update: %v", err)
    }
    if msg.Type != "board" || !strings.Contains(msg.Payload, ">X</button>") {
        t.Fatalf("expected board with X, got %+v", msg)
    }
    latest, _ := svc.Get(gs.ID)
    if latest.Game.Board[4] != domain.X {
        t.Fatalf("expected X in center")
    }
}

func TestWriteSSESplitsLines(t *testing.T) {
    var sb strings.Builder
    writeSSE(&sb, "board", []byte("a\nb"))
    if sb.String() != "event: board\ndata: a\ndata: b\n\n" {
        t.Fatalf("unexpected SSE framing %q", sb.String())
    }
}

func TestEventsUnknownGameIsNotFound(t *testing.T) {
    svc, h := newTestServer(t)
    req := httptest.NewRequest("GET", "/game/missing/events", nil)
    req.Header.Set("Accept", "text/event-stream")
    rr := httptest.NewRecorder()
    h.ServeHTTP(rr, req)
    if rr.Code != http.StatusNotFound {
        t.Fatalf("expected 404, got %d", rr.Code)
    }
    if _, ok := svc.Get("missing"); ok {
        t.Fatalf("events must not create a game")
    }
}
