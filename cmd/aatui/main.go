package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/AI-ML-Modelor/aa/internal/app"
	"github.com/AI-ML-Modelor/aa/internal/lock"
	"github.com/AI-ML-Modelor/aa/internal/session"
	"go.uber.org/fx"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fxApp := fx.New(
		fx.NopLogger,
		app.Module(app.Params{SessionName: sessionName}),
	)

	if err := fxApp.Err(); err != nil {
		var held *lock.LockHeldError
		if errors.As(err, &held) {
			fmt.Fprintf(os.Stderr, "session %q is already open by PID %d\n", sessionName, held.PID)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fxApp.Run()
}
