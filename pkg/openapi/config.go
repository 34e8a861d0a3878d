package openapi

import (
	"os"
	"strings"
)

// Config holds the metadata published in the generated document.
type Config struct {
	Title        string `toml:"title"`
	Description  string `toml:"description"`
	ContactEmail string `toml:"contact_email"`
	// PublicURL is the externally visible API root. Requests are documented
	// against the mount path alone when it is empty.
	PublicURL string `toml:"public_url"`
}

// ConfigEnv maps config fields to environment variable names.
type ConfigEnv struct {
	Title        string
	Description  string
	ContactEmail string
	PublicURL    string
}

// Finalize applies defaults and environment variable overrides.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	for _, pair := range []struct{ dst, src *string }{
		{&c.Title, &overlay.Title},
		{&c.Description, &overlay.Description},
		{&c.ContactEmail, &overlay.ContactEmail},
		{&c.PublicURL, &overlay.PublicURL},
	} {
		if *pair.src != "" {
			*pair.dst = *pair.src
		}
	}
}

// NewSpec starts a document for an API mounted at basePath.
func (c *Config) NewSpec(version, basePath string) *Spec {
	spec := NewSpec(c.Title, version)
	spec.SetDescription(c.Description)
	if c.ContactEmail != "" {
		spec.Info.Contact = &Contact{Email: c.ContactEmail}
	}

	if c.PublicURL != "" {
		spec.Servers = append(spec.Servers, &Server{URL: c.PublicURL, Description: "public"})
	}
	spec.AddServer(basePath)
	return spec
}

func (c *Config) loadDefaults() {
	if c.Title == "" {
		c.Title = "Policy Aligner API"
	}
	if c.Description == "" {
		c.Description = "Policy document alignment and compliance scoring against the Q-C2M2 framework."
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	for _, pair := range []struct {
		dst  *string
		name string
	}{
		{&c.Title, env.Title},
		{&c.Description, env.Description},
		{&c.ContactEmail, env.ContactEmail},
		{&c.PublicURL, env.PublicURL},
	} {
		if pair.name == "" {
			continue
		}
		if v := os.Getenv(pair.name); v != "" {
			*pair.dst = v
		}
	}
}
