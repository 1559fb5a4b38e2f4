package rod

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"sync"
	"time"

	"agent-bridge/internal/application/port/output"
	"agent-bridge/internal/domain/entity"
	"agent-bridge/internal/infrastructure/browser/cleaner"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

const (
	defaultTimeout     = 10 * time.Second
	defaultMaxElements = 200
	maxScreenshotWidth = 1024
)

var ErrBrowserClosed = errors.New("browser is closed")

type BrowserAdapter struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
	maxElems int
	closed   bool
}

type BrowserConfig struct {
	Headless       bool
	SlowMotion     time.Duration
	Timeout        time.Duration
	NoSandbox      bool
	Bin            string
	ViewportWidth  int
	ViewportHeight int
	MaxElements    int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:       true,
		Timeout:        defaultTimeout,
		ViewportWidth:  1280,
		ViewportHeight: 800,
		MaxElements:    defaultMaxElements,
	}
}

// NewBrowserAdapter launches Chrome and opens a blank page. Cancelling ctx
// aborts a slow launch and tears the browser down.
func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxElements <= 0 {
		cfg.MaxElements = defaultMaxElements
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Delete("use-mock-keychain")

	bin := cfg.Bin
	if bin == "" {
		if path, ok := launcher.LookPath(); ok {
			bin = path
		}
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().
		Context(ctx).
		ControlURL(controlURL).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if cfg.ViewportWidth > 0 && cfg.ViewportHeight > 0 {
		_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:  cfg.ViewportWidth,
			Height: cfg.ViewportHeight,
		})
	}

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
		maxElems: cfg.MaxElements,
	}, nil
}

func (b *BrowserAdapter) activePage(ctx context.Context) (*rod.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrowserClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return b.page.Context(ctx), nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, url string) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.Timeout(b.timeout).WaitLoad(); err != nil {
		return fmt.Errorf("page did not load: %w", err)
	}
	_ = page.WaitIdle(2 * time.Second)
	return nil
}

func (b *BrowserAdapter) GoBack(ctx context.Context) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := page.NavigateBack(); err != nil {
		return fmt.Errorf("go back failed: %w", err)
	}
	_ = page.WaitIdle(2 * time.Second)
	return nil
}

func (b *BrowserAdapter) element(page *rod.Page, index int) (*rod.Element, error) {
	selector := fmt.Sprintf(`[%s="%d"]`, indexAttr, index)
	el, err := page.Timeout(b.timeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("element with index %d not found: %w", index, err)
	}
	return el, nil
}

func (b *BrowserAdapter) ClickElement(ctx context.Context, index int) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	el, err := b.element(page, index)
	if err != nil {
		return err
	}
	_ = el.ScrollIntoView()
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click on element %d failed: %w", index, err)
	}
	_ = page.WaitIdle(2 * time.Second)
	return nil
}

func (b *BrowserAdapter) InputText(ctx context.Context, index int, text string) error {
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	el, err := b.element(page, index)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input into element %d failed: %w", index, err)
	}
	return nil
}

var namedKeys = map[string]input.Key{
	"enter":      input.Enter,
	"tab":        input.Tab,
	"escape":     input.Escape,
	"backspace":  input.Backspace,
	"arrowdown":  input.ArrowDown,
	"arrowup":    input.ArrowUp,
	"arrowleft":  input.ArrowLeft,
	"arrowright": input.ArrowRight,
	"pagedown":   input.PageDown,
	"pageup":     input.PageUp,
}

func (b *BrowserAdapter) PressKey(ctx context.Context, key string) error {
	k, ok := namedKeys[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("unsupported key: %s", key)
	}
	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if err := page.Keyboard.Type(k); err != nil {
		return fmt.Errorf("failed to press %s: %w", key, err)
	}
	_ = page.WaitIdle(time.Second)
	return nil
}

func (b *BrowserAdapter) Scroll(ctx context.Context, direction string) error {
	direction = strings.ToLower(strings.TrimSpace(direction))
	switch direction {
	case "down", "up", "top", "bottom":
	default:
		return fmt.Errorf("unknown scroll direction: %s", direction)
	}

	page, err := b.activePage(ctx)
	if err != nil {
		return err
	}
	if _, err := page.Eval(scrollJS, direction); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	_ = page.WaitIdle(500 * time.Millisecond)
	return nil
}

func (b *BrowserAdapter) State(ctx context.Context, withScreenshot bool) (*entity.PageState, error) {
	page, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to read page info: %w", err)
	}

	res, err := page.Eval(indexElementsJS, b.maxElems)
	if err != nil {
		return nil, fmt.Errorf("failed to index elements: %w", err)
	}

	var elements []entity.InteractiveElement
	if err := json.Unmarshal([]byte(res.Value.JSON("", "")), &elements); err != nil {
		return nil, fmt.Errorf("failed to decode elements: %w", err)
	}

	state := &entity.PageState{
		URL:      info.URL,
		Title:    info.Title,
		Elements: elements,
	}

	if withScreenshot {
		shot, err := b.Screenshot(ctx)
		if err != nil {
			return nil, err
		}
		state.Screenshot = shot
	}

	return state, nil
}

func (b *BrowserAdapter) PageText(ctx context.Context) (string, error) {
	page, err := b.activePage(ctx)
	if err != nil {
		return "", err
	}
	raw, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return cleaner.Text(raw, nil), nil
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	page, err := b.activePage(ctx)
	if err != nil {
		return nil, err
	}

	imgBytes, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > maxScreenshotWidth {
		img = imaging.Resize(img, maxScreenshotWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (b *BrowserAdapter) CurrentURL() string {
	page, err := b.activePage(context.Background())
	if err != nil {
		return ""
	}
	info, err := page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Close shuts the browser down and kills the launched process. Safe to call twice.
func (b *BrowserAdapter) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
	return err
}
