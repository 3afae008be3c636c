package web

import (
    "context"
    "encoding/json"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/gorilla/websocket"
)

type wsMessage struct {
    Type    string `json:"type"`
    Payload string `json:"payload,omitempty"`
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// stream pushes the same board fragments as the SSE endpoint over a websocket.
func (h *handlers) stream(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    gs, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        return
    }
    log := h.svc.Logger()

    // hijacked connections outlive r.Context, so the read loop owns cancellation
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    ch, unsub := h.svc.Subscribe(ctx, id)
    defer unsub()

    done := make(chan struct{})
    go func() {
        defer close(done)
        defer conn.Close()
        first := mustMarshal(wsMessage{Type: "board", Payload: string(h.renderBoard(*gs, ""))})
        if err := conn.WriteMessage(websocket.TextMessage, first); err != nil {
            return
        }
        if err := writeWSWithHeartbeat(conn, ch, h.heartbeat); err != nil {
            log.Debug().Err(err).Str("game", id).Msg("ws-write-failed")
        }
        cancel()
    }()

    for {
        if _, _, err := conn.ReadMessage(); err != nil {
            break
        }
    }
    cancel()
    unsub()
    <-done
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte, every time.Duration) error {
    ticker := time.NewTicker(every)
    defer ticker.Stop()
    lastWrite := time.Now()
    pingPayload := mustMarshal(wsMessage{Type: "ping"})

    for {
        select {
        case msg, ok := <-send:
            if !ok {
                return nil
            }
            if err := conn.WriteMessage(websocket.TextMessage, mustMarshal(wsMessage{Type: "board", Payload: string(msg)})); err != nil {
                return err
            }
            lastWrite = time.Now()
        case <-ticker.C:
            if time.Since(lastWrite) < every {
                continue
            }
            if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
                return err
            }
            lastWrite = time.Now()
        }
    }
}

func mustMarshal(v any) []byte {
    b, err := json.Marshal(v)
    if err != nil {
        panic(err)
    }
    return b
}
