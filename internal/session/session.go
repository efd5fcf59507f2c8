// Package session resolves the Zenn session credential used to fetch
// non-public scraps. Resolution tries, in order: an explicit token, an
// environment-supplied token, and finally an interactive login through a
// remotely controlled browser.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// CookieName is the session cookie Zenn sets after a successful login.
const CookieName = "_zenn_session"

// LoginURL is the sign-in page the interactive flow navigates to.
const LoginURL = "https://zenn.dev/enter"

// settleDelay gives the page's cookie-setting scripts time to finish after
// the operator confirms the login.
const settleDelay = 2 * time.Second

var (
	ErrAutomationUnavailable = errors.New("browser automation endpoint unavailable")
	ErrSessionCookieNotFound = errors.New("session cookie not found after login")
)

// Cookie is a single browser cookie as seen by the automation session.
type Cookie struct {
	Name  string
	Value string
}

// Browser is the narrow slice of a browser-automation session the resolver
// needs. Close must be safe to call on every exit path.
type Browser interface {
	Navigate(url string) error
	Cookies() ([]Cookie, error)
	Close() error
}

// Resolver produces a ready-to-send Cookie header value through an ordered
// fallback chain. The zero value resolves anonymously only through the
// interactive path; callers fill in the fields they have.
type Resolver struct {
	// Explicit is a caller-supplied token and wins over everything else.
	Explicit string
	// Env is the environment/config-supplied token, tried second.
	Env string
	// Anonymous skips the chain entirely for public scraps.
	Anonymous bool

	// Launch opens the automation session for the interactive path.
	// Defaults to LaunchBrowser.
	Launch func() (Browser, error)
	// Input carries the operator's confirmation line. Defaults to stdin.
	Input io.Reader
	// Output receives operator prompts. Defaults to stderr.
	Output io.Writer
	// Settle overrides the post-confirmation wait. Defaults to settleDelay.
	Settle time.Duration
}

// Resolve returns the credential as a Cookie header value. ok is false when
// access is intentionally anonymous. Only the interactive path has side
// effects; the two token paths are pure.
func (r Resolver) Resolve(ctx context.Context) (cookie string, ok bool, err error) {
	if r.Anonymous {
		return "", false, nil
	}
	if r.Explicit != "" {
		slog.Debug("using explicit session token")
		return headerValue(r.Explicit), true, nil
	}
	if r.Env != "" {
		slog.Debug("using session token from environment")
		return headerValue(r.Env), true, nil
	}
	token, err := r.interactive(ctx)
	if err != nil {
		return "", false, err
	}
	return headerValue(token), true, nil
}

// interactive drives a visible browser to the login page, blocks until the
// operator confirms, then harvests the session cookie. The automation
// session is closed no matter how this returns.
func (r Resolver) interactive(ctx context.Context) (string, error) {
	launch := r.Launch
	if launch == nil {
		launch = LaunchBrowser
	}
	browser, err := launch()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAutomationUnavailable, err)
	}
	defer browser.Close()

	if err := browser.Navigate(LoginURL); err != nil {
		return "", fmt.Errorf("failed to open login page: %w", err)
	}

	out := r.Output
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintln(out, "A browser window has been opened at", LoginURL)
	fmt.Fprintln(out, "Complete the login there (Google/GitHub OAuth included), then press Enter here to continue...")

	if err := awaitLine(ctx, r.Input); err != nil {
		return "", err
	}

	// Login redirects can still be setting cookies asynchronously.
	settle := r.Settle
	if settle == 0 {
		settle = settleDelay
	}
	select {
	case <-time.After(settle):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	cookies, err := browser.Cookies()
	if err != nil {
		return "", fmt.Errorf("failed to read browser cookies: %w", err)
	}
	for _, c := range cookies {
		if c.Name == CookieName {
			slog.Debug("harvested session cookie from browser")
			return c.Value, nil
		}
	}
	return "", ErrSessionCookieNotFound
}

// awaitLine blocks until one line arrives on in or the context is canceled.
// When cancellation wins, the reader goroutine stays parked on in until the
// process exits; the tool is single-shot, so nothing accumulates.
func awaitLine(ctx context.Context, in io.Reader) error {
	if in == nil {
		in = os.Stdin
	}
	done := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		scanner.Scan()
		done <- scanner.Err()
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// headerValue formats a raw token as a Cookie header value. A token that
// already contains "=" is assumed to be a full name=value pair.
func headerValue(token string) string {
	if strings.Contains(token, "=") {
		return token
	}
	return CookieName + "=" + token
}
