// Command ttt-solve prints the optimal move for a 9-character board state.
//
//	ttt-solve -player 1 100020000
//
// Cells are row-major: '0' empty, '1' player 0 (X), '2' player 1 (O).
package main

import (
    "errors"
    "flag"
    "fmt"
    "io"
    "os"

    "github.com/muesli/termenv"

    "github.com/jaminalder/negamax-tic-tac-toe/internal/domain"
    "github.com/jaminalder/negamax-tic-tac-toe/internal/negamax"
)

var errUsage = errors.New("usage: ttt-solve [-player 0|1] [-plain] <state>")

func main() {
    if err := run(os.Args[1:], os.Stdout); err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(2)
    }
}

func run(args []string, stdout io.Writer) error {
    fs := flag.NewFlagSet("ttt-solve", flag.ContinueOnError)
    fs.SetOutput(io.Discard)
    playerArg := fs.String("player", "1", "player to move: 0/x or 1/o")
    plain := fs.Bool("plain", false, "disable colors")
    if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
        return errUsage
    }
    b, err := domain.ParseBoard(fs.Arg(0))
    if err != nil {
        return err
    }
    p, err := domain.ParsePlayer(*playerArg)
    if err != nil {
        return err
    }

    var opts []termenv.OutputOption
    if *plain {
        opts = append(opts, termenv.WithProfile(termenv.Ascii))
    }
    out := termenv.NewOutput(stdout, opts...)

    scores := negamax.Analyze(b, p)
    best, ok := negamax.Pick(scores)
    printBoard(out, b, best.Cell)

    if w, won := domain.Winner(b); won {
        fmt.Fprintf(out, "%s already won\n", w)
    }
    for _, ms := range scores {
        fmt.Fprintf(out, "  cell %d (r%d c%d): %s\n", ms.Cell, ms.Cell/3, ms.Cell%3, verdict(out, ms.Score))
    }
    if !ok {
        fmt.Fprintln(out, "no move: board is full")
        return nil
    }
    fmt.Fprintf(out, "best move for %s: %d (row %d, col %d)\n", p, best.Cell, best.Cell/3, best.Cell%3)
    return nil
}

func printBoard(out *termenv.Output, b domain.Board, highlight int) {
    for r := 0; r < 3; r++ {
        for c := 0; c < 3; c++ {
            i := r*3 + c
            s := out.String(b[i].String())
            switch {
            case i == highlight:
                s = out.String("*").Foreground(out.Color("2")).Bold()
            case b[i] == domain.X:
                s = s.Foreground(out.Color("4"))
            case b[i] == domain.O:
                s = s.Foreground(out.Color("1"))
            }
            fmt.Fprint(out, s.String())
            if c < 2 {
                fmt.Fprint(out, " ")
            }
        }
        fmt.Fprintln(out)
    }
}

func verdict(out *termenv.Output, score int) string {
    switch {
    case score > negamax.DrawScore:
        return out.String("win").Foreground(out.Color("2")).String()
    case score < negamax.DrawScore:
        return out.String("loss").Foreground(out.Color("1")).String()
    default:
        return out.String("draw").String()
    }
}
