// Package portal drives the provider's storefront through a headless
// Chromium instance. Every Session owns one browser process with a fresh
// profile; nothing is shared between sessions except the playwright driver
// itself.
package portal

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Form selectors on the provider portal. The markup is an external,
// unversioned contract; a provider-side redesign breaks these.
const (
	loginUsernameField = `input[name="username"]`
	loginPasswordField = `input[name="password"]`
	loginSubmitButton  = `button[type="submit"]`

	packageSelect   = `select[name="package"]`
	accountUsername = `input[name="username"]`
	accountPassword = `input[name="password"]`
	macAddressField = `input[name="mac"]`

	confirmTab   = `a[href="#confirm"]`
	submitButton = `button[name="submit_order"]`
)

// Order form paths relative to the provider base URL.
const (
	linePath = "/line"
	magPath  = "/mag"
)

// FormURL joins the provider base URL with the order form path: /mag for
// MAG device orders, /line for standard ones.
func FormURL(base string, mag bool) string {
	base = strings.TrimRight(base, "/")
	if mag {
		return base + magPath
	}
	return base + linePath
}

// isLoginURL reports whether u points at the portal's login page.
func isLoginURL(u string) bool {
	return strings.Contains(u, "/login")
}

// Session is one exclusive browser-automation session against the portal.
// Close must be called exactly once on every path after a session is
// acquired, success or failure.
type Session interface {
	Navigate(url string) error
	RequiresLogin() bool
	Login(username, password string) error
	SelectPackage(planID string) error
	FillAccount(username, password string) error
	FillMAC(mac string) error
	Submit() error
	Close()
}

// Driver launches portal sessions. One Driver serves the whole process; the
// underlying playwright driver is started once and shared.
type Driver struct {
	pw       *playwright.Playwright
	headless bool
	timeout  time.Duration
	settle   time.Duration
}

// NewDriver starts the playwright driver process.
func NewDriver(headless bool, timeout, settle time.Duration) (*Driver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright driver: %w", err)
	}
	return &Driver{pw: pw, headless: headless, timeout: timeout, settle: settle}, nil
}

// Close stops the playwright driver. Open sessions must be closed first.
func (d *Driver) Close() error {
	return d.pw.Stop()
}

// NewSession launches a fresh Chromium process with its own profile and
// returns a Session bound to a single page. Dialogs raised by the portal
// are a side channel, not a decision point: they are accepted automatically
// for as long as the session lives.
func (d *Driver) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Printf("[Portal] Launching browser session (headless=%v)", d.headless)

	browser, err := d.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(d.headless),
		Args: []string{
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-dev-shm-usage",
			"--disable-blink-features=AutomationControlled",
			"--ignore-certificate-errors",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("create browser context: %w", err)
	}
	bctx.SetDefaultTimeout(float64(d.timeout.Milliseconds()))
	bctx.SetDefaultNavigationTimeout(float64(d.timeout.Milliseconds()))

	page, err := bctx.NewPage()
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		log.Printf("[Portal] Auto-accepting %s dialog", dialog.Type())
		_ = dialog.Accept()
	})

	return &chromiumSession{
		browser: browser,
		page:    page,
		timeout: float64(d.timeout.Milliseconds()),
		settle:  d.settle,
	}, nil
}

// chromiumSession drives one page in one browser process.
type chromiumSession struct {
	browser playwright.Browser
	page    playwright.Page
	timeout float64 // milliseconds, playwright's unit
	settle  time.Duration
}

// Navigate opens url and waits for network activity to go quiet. The order
// forms populate their controls asynchronously, so a DOM-parsed wait is not
// enough.
func (s *chromiumSession) Navigate(url string) error {
	if _, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(s.timeout),
	}); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

// RequiresLogin reports whether the last navigation landed on the portal's
// login page instead of the requested form.
func (s *chromiumSession) RequiresLogin() bool {
	return isLoginURL(s.page.URL())
}

// Login authenticates with the provider reseller account and waits for the
// portal to come back idle.
func (s *chromiumSession) Login(username, password string) error {
	if err := s.page.Fill(loginUsernameField, username); err != nil {
		return fmt.Errorf("fill login username: %w", err)
	}
	if err := s.page.Fill(loginPasswordField, password); err != nil {
		return fmt.Errorf("fill login password: %w", err)
	}
	if err := s.page.Click(loginSubmitButton); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	if err := s.waitIdle(); err != nil {
		return fmt.Errorf("wait after login: %w", err)
	}
	if isLoginURL(s.page.URL()) {
		return fmt.Errorf("still on login page after submitting credentials")
	}
	return nil
}

// SelectPackage picks the plan option in the package dropdown. Plan ids the
// portal does not know surface as provider-side errors here.
func (s *chromiumSession) SelectPackage(planID string) error {
	if _, err := s.page.SelectOption(packageSelect, playwright.SelectOptionValues{
		Values: playwright.StringSlice(planID),
	}); err != nil {
		return fmt.Errorf("select package %q: %w", planID, err)
	}
	return nil
}

// FillAccount types the generated credentials into the order form.
func (s *chromiumSession) FillAccount(username, password string) error {
	if err := s.page.Fill(accountUsername, username); err != nil {
		return fmt.Errorf("fill account username: %w", err)
	}
	if err := s.page.Fill(accountPassword, password); err != nil {
		return fmt.Errorf("fill account password: %w", err)
	}
	return nil
}

// FillMAC types the set-top-box MAC address into the MAG order form.
func (s *chromiumSession) FillMAC(mac string) error {
	if err := s.page.Fill(macAddressField, mac); err != nil {
		return fmt.Errorf("fill mac address: %w", err)
	}
	return nil
}

// Submit walks the order through its confirmation tab and places it, then
// waits out the portal's post-submit network activity plus a settling delay
// for the confirmation state to stabilize.
func (s *chromiumSession) Submit() error {
	if err := s.page.Click(confirmTab); err != nil {
		return fmt.Errorf("open confirm tab: %w", err)
	}
	if _, err := s.page.WaitForSelector(submitButton, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(s.timeout),
	}); err != nil {
		return fmt.Errorf("wait for submit button: %w", err)
	}
	if err := s.page.Click(submitButton); err != nil {
		return fmt.Errorf("click submit: %w", err)
	}
	if err := s.waitIdle(); err != nil {
		return fmt.Errorf("wait after submit: %w", err)
	}

	// The confirmation page has no selector worth waiting on; give the
	// portal's scripts a moment to finish recording the order.
	time.Sleep(s.settle)
	return nil
}

func (s *chromiumSession) waitIdle() error {
	return s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(s.timeout),
	})
}

// Close tears down the whole browser process. Errors are logged only; the
// session is unusable afterwards either way.
func (s *chromiumSession) Close() {
	if err := s.browser.Close(); err != nil {
		log.Printf("[Portal] Browser close error: %v", err)
	}
}
