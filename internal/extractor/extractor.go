package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"NewsChecker/internal/domain"
)

// ErrInvalidURL is returned before any request is made for malformed URLs.
var ErrInvalidURL = errors.New("invalid URL")

// Page is a downloaded document handed to parsing strategies.
type Page struct {
	URL         *url.URL
	ContentType string
	Body        []byte
}

// Parser captures a single extraction strategy (readability, plain HTML, etc.).
type Parser interface {
	Name() string
	Parse(ctx context.Context, page Page) (domain.Article, error)
}

// Registry keeps a mapping from parser names to their implementations,
// remembering registration order for fallbacks.
type Registry struct {
	parsers map[string]Parser
	order   []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: map[string]Parser{}}
}

// Register adds or replaces a parser implementation.
func (r *Registry) Register(parser Parser) {
	if r.parsers == nil {
		r.parsers = map[string]Parser{}
	}
	name := parser.Name()
	if _, exists := r.parsers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.parsers[name] = parser
}

// Resolve returns a parser by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Parser, error) {
	if parser, ok := r.parsers[name]; ok {
		return parser, nil
	}
	return nil, fmt.Errorf("parser %s is not registered", name)
}

// Chain returns the preferred parser followed by every other registered one.
// An unknown preferred name yields the registration order.
func (r *Registry) Chain(preferred string) []Parser {
	chain := make([]Parser, 0, len(r.order))
	if p, ok := r.parsers[preferred]; ok {
		chain = append(chain, p)
	}
	for _, name := range r.order {
		if name == preferred {
			continue
		}
		chain = append(chain, r.parsers[name])
	}
	return chain
}
