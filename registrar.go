package autowire

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/xraph/autowire/config"
)

// Option configures AddAutoRegistration.
type Option func(*registrar)

// WithCatalog discovers candidates from catalog instead of the default one.
func WithCatalog(catalog *Catalog) Option {
	return func(r *registrar) {
		r.catalog = catalog
	}
}

// WithLogger logs every emitted registration at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(r *registrar) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPackages keeps only candidates whose package path equals one of the
// prefixes or lies below it.
func WithPackages(prefixes ...string) Option {
	return func(r *registrar) {
		r.packages = append(r.packages, prefixes...)
	}
}

// WithNamingConvention replaces the "I" + type name rule.
func WithNamingConvention(naming NamingConvention) Option {
	return func(r *registrar) {
		if naming != nil {
			r.naming = naming
		}
	}
}

type registrar struct {
	catalog  *Catalog
	logger   *zap.Logger
	packages []string
	naming   NamingConvention
}

// AddAutoRegistration registers every candidate of the catalog into services
// and returns it. Services are emitted by lifetime (scoped, transient,
// singleton), then configuration types are bound from cfg.
//
// The call is not idempotent: running it twice registers every candidate
// twice. cfg may be nil when no configuration types are discovered. On error
// services is left as it was.
func AddAutoRegistration(services *Collection, cfg config.Source, opts ...Option) (*Collection, error) {
	r := &registrar{
		catalog: defaultCatalog,
		logger:  zap.NewNop(),
		naming:  DefaultNamingConvention,
	}
	for _, opt := range opts {
		opt(r)
	}

	if services == nil {
		services = NewCollection()
	}

	candidates, err := r.discover()
	if err != nil {
		return nil, err
	}

	groups := classify(candidates)
	emitted := NewCollection()

	for _, kind := range []Kind{KindScoped, KindTransient, KindSingleton} {
		for _, d := range groups[kind] {
			if err := r.emitService(emitted, d); err != nil {
				return nil, err
			}
		}
	}

	if configs := groups[KindConfiguration]; len(configs) > 0 {
		if cfg == nil {
			return nil, ErrMissingConfiguration.WithContext("type", keyName(configs[0].Type))
		}
		for _, d := range configs {
			if err := r.emitConfiguration(emitted, cfg, d); err != nil {
				return nil, err
			}
		}
	}

	services.entries = append(services.entries, emitted.entries...)

	r.logger.Info("auto-registration complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("registrations", services.Len()),
	)

	return services, nil
}

// discover returns the catalog candidates within the package filter.
// Catalog entries are validated again so hand-built catalogs fail fast too.
func (r *registrar) discover() ([]Descriptor, error) {
	var (
		out []Descriptor
		err error
	)

	for _, d := range r.catalog.Descriptors() {
		if !r.inPackages(d.Type) {
			continue
		}
		if vErr := d.validate(); vErr != nil {
			err = multierr.Append(err, vErr)
			continue
		}
		out = append(out, d)
	}

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *registrar) inPackages(t reflect.Type) bool {
	if len(r.packages) == 0 {
		return true
	}

	pkg := indirect(t).PkgPath()
	for _, prefix := range r.packages {
		if pkg == prefix || strings.HasPrefix(pkg, prefix+"/") {
			return true
		}
	}

	return false
}

// classify groups descriptors by marker, keeping catalog order.
func classify(descs []Descriptor) map[Kind][]Descriptor {
	groups := make(map[Kind][]Descriptor, 4)
	for _, d := range descs {
		groups[d.Kind] = append(groups[d.Kind], d)
	}
	return groups
}

// emitService registers d under its binding keys. Transient types get one
// independent entry per key. Scoped and singleton types bind the first key
// to the implementation and forward the others to it, so every key shares
// one instance.
func (r *registrar) emitService(c *Collection, d Descriptor) error {
	lifetime := d.Kind.Lifetime()
	keys := resolveBindings(d, r.catalog.baseSetOf(d), r.naming)

	first := keys[0]
	for i, key := range keys {
		if i == 0 || lifetime == Transient {
			if err := c.AddType(key, d.Type, d.Constructor, lifetime); err != nil {
				return fmt.Errorf("auto-register %s: %w", d, err)
			}
			r.logger.Debug("registered service",
				zap.String("key", keyName(key)),
				zap.String("impl", keyName(d.Type)),
				zap.Stringer("lifetime", lifetime),
			)
			continue
		}

		if err := c.AddFactory(key, forwardTo(first), lifetime, first); err != nil {
			return fmt.Errorf("auto-register %s: %w", d, err)
		}
		r.logger.Debug("registered forwarder",
			zap.String("key", keyName(key)),
			zap.String("target", keyName(first)),
			zap.Stringer("lifetime", lifetime),
		)
	}

	return nil
}

// forwardTo resolves target from the resolver the forwarder runs in: the
// current scope for scoped services, the root for singletons.
func forwardTo(target reflect.Type) Factory {
	return func(r Resolver) (any, error) {
		return r.Resolve(target)
	}
}

func (r *registrar) emitConfiguration(c *Collection, cfg config.Source, d Descriptor) error {
	section := d.SectionName()

	if err := d.bind(c, cfg, section); err != nil {
		return fmt.Errorf("auto-register %s: %w", d, err)
	}

	r.logger.Debug("registered configuration",
		zap.String("type", keyName(d.Type)),
		zap.String("section", section),
	)

	return nil
}
