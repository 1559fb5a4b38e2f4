// Package mocks holds in-memory port implementations shared by unit tests.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"agent-bridge/internal/application/port/output"
	"agent-bridge/internal/domain/entity"
)

var _ output.BrowserPort = (*MockBrowser)(nil)

// MockBrowser records every call and serves a fixed page state.
type MockBrowser struct {
	mu sync.Mutex

	url      string
	title    string
	elements []entity.InteractiveElement
	text     string
	shot     *entity.Screenshot

	errs map[string]error

	Calls      []string
	CloseCalls int
}

func NewMockBrowser() *MockBrowser {
	return &MockBrowser{
		url:   "about:blank",
		title: "",
		errs:  make(map[string]error),
		shot:  &entity.Screenshot{Data: []byte("jpeg-bytes"), Format: "jpeg", Width: 4, Height: 3},
	}
}

func (m *MockBrowser) WithElements(elements ...entity.InteractiveElement) *MockBrowser {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.elements = elements
	return m
}

func (m *MockBrowser) WithText(text string) *MockBrowser {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return m
}

func (m *MockBrowser) WithTitle(title string) *MockBrowser {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.title = title
	return m
}

// WithError makes the named method fail, e.g. WithError("ClickElement", err).
func (m *MockBrowser) WithError(method string, err error) *MockBrowser {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[method] = err
	return m
}

func (m *MockBrowser) record(call string, method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
	return m.errs[method]
}

func (m *MockBrowser) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

func (m *MockBrowser) Navigate(ctx context.Context, url string) error {
	if err := m.record("navigate "+url, "Navigate"); err != nil {
		return err
	}
	m.mu.Lock()
	m.url = url
	m.mu.Unlock()
	return nil
}

func (m *MockBrowser) GoBack(ctx context.Context) error {
	return m.record("go_back", "GoBack")
}

func (m *MockBrowser) ClickElement(ctx context.Context, index int) error {
	return m.record(fmt.Sprintf("click %d", index), "ClickElement")
}

func (m *MockBrowser) InputText(ctx context.Context, index int, text string) error {
	return m.record(fmt.Sprintf("input %d %s", index, text), "InputText")
}

func (m *MockBrowser) PressKey(ctx context.Context, key string) error {
	return m.record("key "+key, "PressKey")
}

func (m *MockBrowser) Scroll(ctx context.Context, direction string) error {
	return m.record("scroll "+direction, "Scroll")
}

func (m *MockBrowser) State(ctx context.Context, withScreenshot bool) (*entity.PageState, error) {
	if err := m.record("state", "State"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	state := &entity.PageState{
		URL:      m.url,
		Title:    m.title,
		Elements: append([]entity.InteractiveElement(nil), m.elements...),
	}
	if withScreenshot {
		state.Screenshot = m.shot
	}
	return state, nil
}

func (m *MockBrowser) PageText(ctx context.Context) (string, error) {
	if err := m.record("page_text", "PageText"); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *MockBrowser) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	if err := m.record("screenshot", "Screenshot"); err != nil {
		return nil, err
	}
	return m.shot, nil
}

func (m *MockBrowser) CurrentURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.url
}

func (m *MockBrowser) Close() error {
	m.mu.Lock()
	m.CloseCalls++
	m.mu.Unlock()
	return m.record("close", "Close")
}
