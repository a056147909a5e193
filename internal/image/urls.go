package image

import "net/url"

// Resolver turns relative resource paths into absolute caller-facing
// URLs rooted at the configured public base address.
type Resolver struct {
	base *url.URL
}

// NewResolver validates the configured base address eagerly so a
// misconfigured deployment fails at startup, not mid-upload.
func NewResolver(base string) (*Resolver, error) {
	if base == "" {
		return nil, &ConfigError{Reason: "base URL is empty"}
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, &ConfigError{Reason: "base URL is malformed: " + err.Error()}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &ConfigError{Reason: "base URL must include scheme and host"}
	}
	return &Resolver{base: u}, nil
}

// Resolve joins the base address with a relative path. Pure string
// work; it cannot fail once the resolver was constructed.
func (r *Resolver) Resolve(relative string) (string, error) {
	if r == nil || r.base == nil {
		return "", &ConfigError{Reason: "resolver not configured"}
	}
	return r.base.JoinPath(relative).String(), nil
}
