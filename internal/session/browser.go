package session

import (
	"github.com/tebeka/selenium"
)

// DriverURL is the local WebDriver endpoint, conventionally a chromedriver
// started with --port=9515.
const DriverURL = "http://localhost:9515"

// seleniumBrowser adapts a WebDriver session to the Browser interface.
type seleniumBrowser struct {
	wd selenium.WebDriver
}

// LaunchBrowser creates a visible Chrome session against DriverURL.
func LaunchBrowser() (Browser, error) {
	caps := selenium.Capabilities{"browserName": "chrome"}
	wd, err := selenium.NewRemote(caps, DriverURL)
	if err != nil {
		return nil, err
	}
	return &seleniumBrowser{wd: wd}, nil
}

func (b *seleniumBrowser) Navigate(url string) error {
	return b.wd.Get(url)
}

func (b *seleniumBrowser) Cookies() ([]Cookie, error) {
	raw, err := b.wd.GetCookies()
	if err != nil {
		return nil, err
	}
	cookies := make([]Cookie, len(raw))
	for i, c := range raw {
		cookies[i] = Cookie{Name: c.Name, Value: c.Value}
	}
	return cookies, nil
}

func (b *seleniumBrowser) Close() error {
	return b.wd.Quit()
}
