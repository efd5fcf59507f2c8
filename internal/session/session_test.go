package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeBrowser satisfies Browser and records what the resolver did with it.
type fakeBrowser struct {
	cookies    []Cookie
	cookiesErr error

	navigated string
	closed    bool
}

func (b *fakeBrowser) Navigate(url string) error {
	b.navigated = url
	return nil
}

func (b *fakeBrowser) Cookies() ([]Cookie, error) {
	return b.cookies, b.cookiesErr
}

func (b *fakeBrowser) Close() error {
	b.closed = true
	return nil
}

func testResolver(browser *fakeBrowser) Resolver {
	return Resolver{
		Launch: func() (Browser, error) { return browser, nil },
		Input:  strings.NewReader("\n"),
		Output: io.Discard,
		Settle: time.Millisecond,
	}
}

func TestResolvePrecedence(t *testing.T) {
	cases := []struct {
		name     string
		explicit string
		env      string
		want     string
	}{
		{"explicit wins over env", "aaa", "bbb", CookieName + "=aaa"},
		{"explicit alone", "aaa", "", CookieName + "=aaa"},
		{"env when explicit absent", "", "bbb", CookieName + "=bbb"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := Resolver{
				Explicit: c.explicit,
				Env:      c.env,
				Launch: func() (Browser, error) {
					t.Fatal("interactive path must not run when a token is supplied")
					return nil, nil
				},
			}
			cookie, ok, err := r.Resolve(context.Background())
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, c.want, cookie)
		})
	}
}

func TestResolveAnonymous(t *testing.T) {
	r := Resolver{
		Explicit:  "ignored",
		Anonymous: true,
	}
	cookie, ok, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, cookie)
}

func TestResolvePassesThroughFullCookiePair(t *testing.T) {
	r := Resolver{Explicit: "_zenn_session=abc"}
	cookie, ok, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "_zenn_session=abc", cookie)
}

func TestResolveInteractive(t *testing.T) {
	browser := &fakeBrowser{cookies: []Cookie{
		{Name: "other", Value: "x"},
		{Name: CookieName, Value: "secret"},
	}}
	r := testResolver(browser)

	cookie, ok, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, CookieName+"=secret", cookie)
	require.Equal(t, LoginURL, browser.navigated)
	require.True(t, browser.closed)
}

func TestResolveInteractiveCookieMissing(t *testing.T) {
	browser := &fakeBrowser{cookies: []Cookie{{Name: "other", Value: "x"}}}
	r := testResolver(browser)

	_, _, err := r.Resolve(context.Background())
	require.ErrorIs(t, err, ErrSessionCookieNotFound)
	require.True(t, browser.closed, "session must be closed on failure too")
}

func TestResolveInteractiveCookieReadFailure(t *testing.T) {
	browser := &fakeBrowser{cookiesErr: errors.New("boom")}
	r := testResolver(browser)

	_, _, err := r.Resolve(context.Background())
	require.Error(t, err)
	require.True(t, browser.closed)
}

func TestResolveInteractiveLaunchFailure(t *testing.T) {
	r := Resolver{
		Launch: func() (Browser, error) { return nil, errors.New("connection refused") },
	}
	_, _, err := r.Resolve(context.Background())
	require.ErrorIs(t, err, ErrAutomationUnavailable)
}

func TestResolveInteractiveCanceled(t *testing.T) {
	browser := &fakeBrowser{cookies: []Cookie{{Name: CookieName, Value: "secret"}}}
	r := testResolver(browser)
	// An input that never delivers a line simulates the operator walking away.
	blocked, _ := io.Pipe()
	r.Input = blocked

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.Resolve(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, browser.closed, "abort must still close the browser session")
}
