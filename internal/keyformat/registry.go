package keyformat

// Registry maps categories to formatters. The zero value renders every key as hex.
// A Registry is immutable after construction and may be shared freely.
type Registry struct {
	formatters map[Category]*Formatter
	all        *Formatter
}

// DefaultRegistry returns a registry holding the built-in layout of every catalog
// category that has one.
func DefaultRegistry() Registry {
	formatters := make(map[Category]*Formatter, len(catalog))
	for c, info := range catalog {
		if info.spec == "" {
			continue
		}
		formatters[c] = MustCompile(info.spec)
	}
	return Registry{formatters: formatters}
}

// HexRegistry returns a registry that renders every key as hex.
func HexRegistry() Registry {
	return Registry{all: hexFormatter}
}

// SpecRegistry returns a registry that applies spec to every category,
// regardless of its default layout.
func SpecRegistry(spec string) (Registry, error) {
	f, err := Compile(spec)
	if err != nil {
		return Registry{}, err
	}
	return Registry{all: f}, nil
}

// ForCategory returns the formatter for c, or the hex formatter if none is registered.
func (r Registry) ForCategory(c Category) *Formatter {
	if r.all != nil {
		return r.all
	}
	if f, ok := r.formatters[c]; ok {
		return f
	}
	return hexFormatter
}

// Format renders key using the formatter of the category in its prefix.
func (r Registry) Format(key []byte) string {
	c, ok := CategoryOf(key)
	if !ok {
		return Hex(key)
	}
	return r.ForCategory(c).Format(key)
}
