package app

import (
    "github.com/google/uuid"
)

// ComputerID is the seat id held by the built-in solver.
const ComputerID = "computer"

// newGameID returns a random UUIDv4 for a new game.
func newGameID() string {
    return uuid.NewString()
}

// isComputer reports whether a seat id belongs to the solver; human ids are
// cookie UUIDs and can never collide with it.
func isComputer(playerID string) bool {
    return playerID == ComputerID
}
