package browser

import (
	"context"
	"fmt"
	"sync"

	"tiktoksync/pkg/errors"
	"tiktoksync/pkg/logger"
	"tiktoksync/pkg/tiktok"
)

// Driver is a single browser page that can load a URL and hand back the
// rendered document once network activity has settled
type Driver interface {
	Navigate(ctx context.Context, url string) (string, error)
	Close() error
}

// LaunchFunc starts a browser and returns a driver bound to one page
type LaunchFunc func(ctx context.Context) (Driver, error)

// State is the position of a session in its lifecycle
type State int

const (
	StateIdle State = iota
	StateProfileLoaded
	StateLatestLinkResolved
	StatePostPageLoaded
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProfileLoaded:
		return "profile_loaded"
	case StateLatestLinkResolved:
		return "latest_link_resolved"
	case StatePostPageLoaded:
		return "post_page_loaded"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is the rendered HTML of a loaded page
type Snapshot struct {
	URL  string
	HTML string
}

// Session walks one browser page through
// idle -> profile loaded -> latest link resolved -> post page loaded -> closed.
// The browser is launched on the first navigation, so closing an idle
// session releases nothing.
type Session struct {
	mu          sync.Mutex
	launch      LaunchFunc
	baseURL     string
	logger      logger.Logger
	driver      Driver
	state       State
	profileHTML string
	postURL     string
}

// NewSession creates an idle session
func NewSession(launch LaunchFunc, baseURL string, log logger.Logger) *Session {
	if baseURL == "" {
		baseURL = tiktok.BaseURL
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Session{
		launch:  launch,
		baseURL: baseURL,
		logger:  log.WithField("component", "browser"),
		state:   StateIdle,
	}
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OpenProfile loads the creator's profile page
func (s *Session) OpenProfile(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StateIdle); err != nil {
		return err
	}

	profileURL := tiktok.GetProfileURL(s.baseURL, username)
	html, err := s.navigate(ctx, profileURL)
	if err != nil {
		return err
	}

	s.profileHTML = html
	s.state = StateProfileLoaded
	return nil
}

// ResolveLatestPostURL returns the first post link on the loaded profile
func (s *Session) ResolveLatestPostURL() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StateProfileLoaded); err != nil {
		return "", err
	}

	postURL, err := tiktok.LatestPostURL(s.baseURL, s.profileHTML)
	if err != nil {
		return "", err
	}

	s.postURL = postURL
	s.state = StateLatestLinkResolved
	s.logger.DebugWithFields("Resolved latest post", map[string]interface{}{"url": postURL})
	return postURL, nil
}

// OpenPost loads a post page and returns its rendered snapshot
func (s *Session) OpenPost(ctx context.Context, postURL string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.expect(StateLatestLinkResolved); err != nil {
		return nil, err
	}

	html, err := s.navigate(ctx, postURL)
	if err != nil {
		return nil, err
	}

	s.state = StatePostPageLoaded
	return &Snapshot{URL: postURL, HTML: html}, nil
}

// Close releases the browser. Calling it more than once is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	s.profileHTML = ""

	if s.driver == nil {
		return nil
	}

	driver := s.driver
	s.driver = nil
	if err := driver.Close(); err != nil {
		s.logger.WithError(err).Warn("Failed to close browser")
		return fmt.Errorf("failed to close browser: %w", err)
	}
	s.logger.Debug("Browser closed")
	return nil
}

func (s *Session) expect(want State) error {
	if s.state != want {
		return fmt.Errorf("browser session is %s, expected %s", s.state, want)
	}
	return nil
}

// navigate must be called with s.mu held
func (s *Session) navigate(ctx context.Context, url string) (string, error) {
	if s.driver == nil {
		if s.launch == nil {
			return "", errors.New(errors.ErrorTypeNavigation, "no browser launcher configured")
		}
		driver, err := s.launch(ctx)
		if err != nil {
			return "", errors.Wrap(errors.ErrorTypeNavigation, err, "failed to launch browser")
		}
		s.driver = driver
	}

	s.logger.DebugWithFields("Navigating", map[string]interface{}{"url": url})
	html, err := s.driver.Navigate(ctx, url)
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeNavigation, err, fmt.Sprintf("failed to load %s", url))
	}
	return html, nil
}
