package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/kotirearend/giglog/internal/client/gateway"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for an email, display name, and password and
// attempts to create a new account via the AuthService. A successful
// registration signs the user in.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	displayName, err := getSimpleText(a.reader, "Enter display name", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	s, err := a.authService.Register(ctx, email, string(password), displayName)
	if err != nil {
		log.Printf("Registration unsuccessful: %s", err.Error())
		return err
	}

	a.userEmail = s.Email
	a.setMode(ModeOnline)
	fmt.Println("Success!")
	return nil
}

// Login prompts the user for credentials and tries to authenticate.
//
// If the server is unavailable but a session was persisted earlier, the app
// falls back to offline use: the local diary stays fully usable and the
// sync engine catches up when the connection returns.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	s, err := a.authService.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, gateway.ErrUnavailable) {
			found, restoreErr := a.authService.Restore(ctx)
			if restoreErr == nil && found {
				log.Printf("Server unavailable, continuing offline")
				a.userEmail = email
				a.setMode(ModeOffline)
				return nil
			}
		}
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	a.userEmail = s.Email
	a.setMode(ModeOnline)
	log.Printf("Login successful")

	if syncErr := a.engine.Sync(ctx); syncErr != nil {
		log.Printf("initial sync: %s", syncErr.Error())
	}
	return nil
}

// Logout drops the persisted session. Local diary data is kept.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.userEmail = ""
	return nil
}
