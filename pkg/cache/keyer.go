package cache

import (
	"github.com/matzehuels/slidetype/pkg/advisor"
	"github.com/matzehuels/slidetype/pkg/style"
)

// keyVersion is bumped whenever rendering changes enough to invalidate old
// entries.
const keyVersion = "v1"

// Key prefixes, also used as the key type reported to observability hooks.
const (
	PrefixRender  = "render"
	PrefixSuggest = "suggest"
)

// RenderKeyOpts are the render inputs besides the background.
type RenderKeyOpts struct {
	Title  string
	Body   string
	Style  style.TextStyle
	Width  int
	Height int
	Fonts  string // font configuration fingerprint
}

// Keyer builds cache keys. backgroundHash is the [Hash] of the encoded
// background bytes.
type Keyer interface {
	RenderKey(backgroundHash string, opts RenderKeyOpts) string
	SuggestKey(backgroundHash, title, body string) string
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey returns the key of a rendered slide.
func (DefaultKeyer) RenderKey(backgroundHash string, opts RenderKeyOpts) string {
	return hashKey(PrefixRender, keyVersion, backgroundHash, opts)
}

// SuggestKey returns the key of a style suggestion. Only the presence of the
// title and body affects a suggestion, with whitespace-only text counted as
// absent.
func (DefaultKeyer) SuggestKey(backgroundHash, title, body string) string {
	return hashKey(PrefixSuggest, keyVersion, backgroundHash, !advisor.IsBlank(title), !advisor.IsBlank(body))
}
