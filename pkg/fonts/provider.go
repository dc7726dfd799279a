package fonts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/flopp/go-findfont"
	"golang.org/x/image/font/sfnt"

	"github.com/matzehuels/slidetype/pkg/errors"
	"github.com/matzehuels/slidetype/pkg/typeset"
)

// Provider resolves font requests through the fallback chain described in
// the package documentation. Register fonts before the first Resolve: faces
// already in the cache are not re-resolved.
type Provider struct {
	mu       sync.RWMutex
	families map[string]*family
	digests  map[string]string // "family/weight" -> sha256 of the font file

	cache     *Cache
	logger    *log.Logger
	find      Finder
	fallbacks []string
	builtin   bool
	basic     bool
}

// Option configures a Provider.
type Option func(*Provider)

// WithCache shares c between providers. By default each provider has its own.
func WithCache(c *Cache) Option {
	return func(p *Provider) { p.cache = c }
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *log.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// WithSystemFallbacks replaces the list of platform fallback file names.
// An empty list disables the platform tier.
func WithSystemFallbacks(names []string) Option {
	return func(p *Provider) { p.fallbacks = slices.Clone(names) }
}

// WithFinder replaces the go-findfont lookup, mostly for tests.
func WithFinder(f Finder) Option {
	return func(p *Provider) { p.find = f }
}

// WithoutBuiltin disables the embedded Go family, both as a registered
// family and as a fallback tier.
func WithoutBuiltin() Option {
	return func(p *Provider) { p.builtin = false }
}

// WithoutBasic disables the bitmap face of last resort.
func WithoutBasic() Option {
	return func(p *Provider) { p.basic = false }
}

// NewProvider creates a provider with the embedded Go family registered,
// the default platform fallbacks and a private cache.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		families:  make(map[string]*family),
		digests:   make(map[string]string),
		logger:    log.New(io.Discard),
		find:      findfont.Find,
		fallbacks: DefaultSystemFallbacks,
		builtin:   true,
		basic:     true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cache == nil {
		p.cache = NewCache()
	}
	return p
}

// Cache returns the provider's face cache.
func (p *Provider) Cache() *Cache { return p.cache }

// Register adds font data under family name at the given weight, replacing a
// previous registration of the same pair.
func (p *Provider) Register(name string, weight int, data []byte) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New(errors.ErrCodeInvalidInput, "font family name is empty")
	}
	src, err := parseSource(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFontUnavailable, err, "parse font %s", name)
	}
	p.register(name, weight, src, data)
	return nil
}

func (p *Provider) register(name string, weight int, src source, data []byte) {
	sum := sha256.Sum256(data)
	p.mu.Lock()
	defer p.mu.Unlock()
	key := strings.ToLower(name)
	f, ok := p.families[key]
	if !ok {
		f = &family{name: name, weights: make(map[int]source)}
		p.families[key] = f
	}
	f.weights[weight] = src
	p.digests[fmt.Sprintf("%s/%d", key, weight)] = hex.EncodeToString(sum[:])
}

// Fingerprint identifies the font configuration: every registered file and
// the fallback settings. Two providers with equal fingerprints resolve
// registered families to the same faces. Fonts installed on the system are
// not part of it.
func (p *Provider) Fingerprint() string {
	p.mu.RLock()
	lines := make([]string, 0, len(p.digests)+3)
	for k, d := range p.digests {
		lines = append(lines, k+"="+d)
	}
	p.mu.RUnlock()
	slices.Sort(lines)
	lines = append(lines,
		"fallbacks="+strings.Join(p.fallbacks, ","),
		fmt.Sprintf("builtin=%t", p.builtin),
		fmt.Sprintf("basic=%t", p.basic),
	)
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:8])
}

// LoadDir registers every .ttf and .otf file below dir, named by the family
// and subfamily recorded in the font itself. Files that fail to parse are
// logged and skipped. It returns the number of fonts registered.
func (p *Provider) LoadDir(dir string) (int, error) {
	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ttf", ".otf":
		default:
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name, weight, err := describe(data, path)
		if err != nil {
			p.logger.Warn("skipping font", "path", path, "err", err)
			return nil
		}
		src, err := parseSource(data)
		if err != nil {
			p.logger.Warn("skipping font", "path", path, "err", err)
			return nil
		}
		p.register(name, weight, src, data)
		p.logger.Debug("registered font", "family", name, "weight", weight, "path", path)
		n++
		return nil
	})
	if err != nil {
		return n, errors.Wrap(errors.ErrCodeFileNotFound, err, "load fonts from %s", dir)
	}
	return n, nil
}

// describe reads the family name and weight from the font's name table,
// preferring the typographic names used by multi-weight families.
func describe(data []byte, path string) (string, int, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return "", 0, err
	}
	var buf sfnt.Buffer
	name := firstName(f, &buf, sfnt.NameIDTypographicFamily, sfnt.NameIDFamily)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if i := strings.IndexByte(name, '-'); i > 0 {
			name = name[:i]
		}
	}
	sub := firstName(f, &buf, sfnt.NameIDTypographicSubfamily, sfnt.NameIDSubfamily)
	if sub == "" {
		sub = filepath.Base(path)
	}
	return name, WeightFromName(sub), nil
}

func firstName(f *sfnt.Font, buf *sfnt.Buffer, ids ...sfnt.NameID) string {
	for _, id := range ids {
		if s, err := f.Name(buf, id); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// Families returns the names of all registered families, sorted.
func (p *Provider) Families() []string {
	p.mu.RLock()
	names := make([]string, 0, len(p.families)+1)
	for _, f := range p.families {
		names = append(names, f.name)
	}
	p.mu.RUnlock()
	if p.builtin && !slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(n, BuiltinFamily) }) {
		names = append(names, BuiltinFamily)
	}
	slices.Sort(names)
	return names
}

// Resolve returns a face for family at weight and pixel size, walking the
// fallback chain. The result is cached under the requested key.
func (p *Provider) Resolve(family string, weight, size int) (*Face, error) {
	if size <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "font size must be positive, got %d", size)
	}
	key := Key{Family: family, Weight: weight, Size: size}
	return p.cache.GetOrLoad(key, func() (*Face, error) {
		f, err := p.load(family, weight, size)
		if err != nil {
			return nil, err
		}
		if f.Origin != OriginRegistered {
			p.logger.Debug("font fallback", "requested", family, "weight", weight, "resolved", f.Family, "origin", f.Origin)
		}
		return f, nil
	})
}

func (p *Provider) load(name string, weight, size int) (*Face, error) {
	// Registered families, the embedded one included.
	if fam := p.lookup(name); fam != nil {
		if w, src, ok := fam.nearest(weight); ok {
			return newFace(fam.name, w, size, OriginRegistered, src)
		}
	}

	// The requested family installed on this machine, then platform fallbacks.
	if src, _, err := findSource(p.find, systemCandidates(name, weight)); err == nil {
		return newFace(name, weight, size, OriginSystem, src)
	}
	if len(p.fallbacks) > 0 {
		if src, file, err := findSource(p.find, p.fallbacks); err == nil {
			fam := strings.TrimSuffix(file, filepath.Ext(file))
			return newFace(fam, WeightFromName(fam), size, OriginSystem, src)
		}
	}

	if p.builtin {
		fam, err := builtinFamily()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse embedded fonts")
		}
		if w, src, ok := fam.nearest(weight); ok {
			return newFace(fam.name, w, size, OriginBuiltin, src)
		}
	}

	if p.basic {
		return newFace("basic", WeightRegular, size, OriginBasic, basicSource{})
	}

	return nil, errors.New(errors.ErrCodeFontUnavailable,
		"no font available for %q weight %d", name, weight)
}

// lookup returns a snapshot of the named family, so callers can read its
// weights while Register runs concurrently.
func (p *Provider) lookup(name string) *family {
	key := strings.ToLower(strings.TrimSpace(name))
	p.mu.RLock()
	fam, ok := p.families[key]
	if ok {
		fam = &family{name: fam.name, weights: maps.Clone(fam.weights)}
	}
	p.mu.RUnlock()
	if ok {
		return fam
	}
	if p.builtin && key == strings.ToLower(BuiltinFamily) {
		if fam, err := builtinFamily(); err == nil {
			return fam
		}
	}
	return nil
}

// MeasurerAt returns a size-parameterized measurer for family at weight,
// suitable for [typeset.Fit].
func (p *Provider) MeasurerAt(family string, weight int) typeset.MeasurerAt {
	return func(size int) (typeset.Measurer, error) {
		f, err := p.Resolve(family, weight, size)
		if err != nil {
			return nil, err
		}
		m, err := f.Measurer()
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}
