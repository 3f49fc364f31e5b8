package messages

import (
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-social/pkg/domain"
	gotemplate "github.com/goliatone/go-template"
)

// Renderer turns a stored message into the HTML fragment pushed to the
// recipient's browser.
type Renderer interface {
	Render(msg domain.Message, sender domain.User) (string, error)
}

// RendererFunc adapts a function into a Renderer.
type RendererFunc func(msg domain.Message, sender domain.User) (string, error)

func (f RendererFunc) Render(msg domain.Message, sender domain.User) (string, error) {
	return f(msg, sender)
}

const defaultFragment = `<li class="message" data-id="{{ id }}">` +
	`<span class="sender">{{ sender|escape }}</span>` +
	`<p class="body">{{ body|escape }}</p>` +
	`<time datetime="{{ sent }}">{{ sent }}</time></li>`

// TemplateRenderer renders messages through a go-template engine.
type TemplateRenderer struct {
	engine *gotemplate.Engine
	source string
	mu     sync.Mutex
}

// NewTemplateRenderer uses source, or the built-in fragment when source is
// empty. Values are not escaped unless the template asks for it.
func NewTemplateRenderer(source string, opts ...gotemplate.Option) (*TemplateRenderer, error) {
	if source == "" {
		source = defaultFragment
	}
	engine, err := gotemplate.NewRenderer(append([]gotemplate.Option{gotemplate.WithBaseDir(".")}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("messages: renderer: %w", err)
	}
	return &TemplateRenderer{engine: engine, source: source}, nil
}

func (r *TemplateRenderer) Render(msg domain.Message, sender domain.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.RenderString(r.source, map[string]any{
		"id":     msg.ID.String(),
		"sender": sender.DisplayName(),
		"body":   msg.Body,
		"sent":   msg.CreatedAt.Format(time.RFC3339),
		"unread": msg.Unread,
	})
}
