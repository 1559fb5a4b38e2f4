package output

import (
	"context"

	"agent-bridge/internal/domain/entity"
)

type BrowserPort interface {
	Navigate(ctx context.Context, url string) error
	GoBack(ctx context.Context) error
	ClickElement(ctx context.Context, index int) error
	InputText(ctx context.Context, index int, text string) error
	PressKey(ctx context.Context, key string) error
	Scroll(ctx context.Context, direction string) error

	State(ctx context.Context, withScreenshot bool) (*entity.PageState, error)
	PageText(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) (*entity.Screenshot, error)

	CurrentURL() string
	Close() error
}
