// Package testutil provides mocks and helpers for render service tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/GriffinCanCode/seo-render/internal/browser"
	"github.com/stretchr/testify/mock"
)

// MockLauncher is a mock implementation of browser.Launcher.
type MockLauncher struct {
	mock.Mock
}

// Launch mocks the Launch method.
func (m *MockLauncher) Launch(ctx context.Context) (browser.Browser, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(browser.Browser), args.Error(1)
}

// MockBrowser is a mock implementation of browser.Browser.
type MockBrowser struct {
	mock.Mock
}

// NewPage mocks the NewPage method.
func (m *MockBrowser) NewPage(ctx context.Context) (browser.Page, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(browser.Page), args.Error(1)
}

// Close mocks the Close method.
func (m *MockBrowser) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockPage is a mock implementation of browser.Page.
type MockPage struct {
	mock.Mock
}

// Navigate mocks the Navigate method.
func (m *MockPage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	args := m.Called(ctx, url, timeout)
	return args.Error(0)
}

// Evaluate mocks the Evaluate method. Script arguments are matched as one slice.
func (m *MockPage) Evaluate(ctx context.Context, js string, params ...any) error {
	args := m.Called(ctx, js, params)
	return args.Error(0)
}

// Content mocks the Content method.
func (m *MockPage) Content(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// Session bundles the mocks that make up one browser session.
type Session struct {
	Launcher *MockLauncher
	Browser  *MockBrowser
	Page     *MockPage
}

// NewSession creates unconfigured mocks for one browser session.
func NewSession(t *testing.T) *Session {
	t.Helper()
	return &Session{
		Launcher: new(MockLauncher),
		Browser:  new(MockBrowser),
		Page:     new(MockPage),
	}
}

// ExpectLaunch expects one launch that returns the session's browser.
func (s *Session) ExpectLaunch() *Session {
	s.Launcher.On("Launch", mock.Anything).Return(s.Browser, nil).Once()
	return s
}

// ExpectPage expects one page to be opened.
func (s *Session) ExpectPage() *Session {
	s.Browser.On("NewPage", mock.Anything).Return(s.Page, nil).Once()
	return s
}

// ExpectClose expects the browser to be closed once with err.
func (s *Session) ExpectClose(err error) *Session {
	s.Browser.On("Close").Return(err).Once()
	return s
}

// ExpectRender sets up a session in which every step succeeds and the page
// serializes to html.
func (s *Session) ExpectRender(html string) *Session {
	s.ExpectLaunch().ExpectPage().ExpectClose(nil)
	s.Page.On("Navigate", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	s.Page.On("Evaluate", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	s.Page.On("Content", mock.Anything).Return(html, nil).Once()
	return s
}

// AssertExpectations asserts every mock in the session.
func (s *Session) AssertExpectations(t *testing.T) {
	t.Helper()
	s.Launcher.AssertExpectations(t)
	s.Browser.AssertExpectations(t)
	s.Page.AssertExpectations(t)
}

// AssertClosedOnce fails unless the browser was closed exactly once.
func (s *Session) AssertClosedOnce(t *testing.T) {
	t.Helper()
	s.Browser.AssertNumberOfCalls(t, "Close", 1)
}
