package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodOptions configures the Chromium instance behind a session
type RodOptions struct {
	Headless          bool
	BinPath           string
	UserAgent         string
	IdleInterval      time.Duration
	NavigationTimeout time.Duration
}

// RodLauncher returns a LaunchFunc that starts Chromium via go-rod
func RodLauncher(opts RodOptions) LaunchFunc {
	return func(ctx context.Context) (Driver, error) {
		l := launcher.New().Headless(opts.Headless)
		if opts.BinPath != "" {
			l = l.Bin(opts.BinPath)
		}

		controlURL, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to start chromium: %w", err)
		}

		browser := rod.New().ControlURL(controlURL)
		if err := browser.Connect(); err != nil {
			l.Kill()
			return nil, fmt.Errorf("failed to connect to chromium: %w", err)
		}

		page, err := browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			_ = browser.Close()
			l.Kill()
			return nil, fmt.Errorf("failed to open page: %w", err)
		}

		if opts.UserAgent != "" {
			if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: opts.UserAgent}); err != nil {
				_ = browser.Close()
				l.Kill()
				return nil, fmt.Errorf("failed to set user agent: %w", err)
			}
		}

		return &rodDriver{launcher: l, browser: browser, page: page, opts: opts}, nil
	}
}

type rodDriver struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	opts     RodOptions
}

// Navigate loads url and waits until no new request has started for the
// idle interval
func (d *rodDriver) Navigate(ctx context.Context, url string) (string, error) {
	if d.opts.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.NavigationTimeout)
		defer cancel()
	}

	page := d.page.Context(ctx)
	wait := page.WaitRequestIdle(d.opts.IdleInterval, nil, nil, nil)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}
	wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	return page.HTML()
}

func (d *rodDriver) Close() error {
	err := d.browser.Close()
	d.launcher.Kill()
	d.launcher.Cleanup()
	return err
}
