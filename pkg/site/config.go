package site

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-book/pkg/models"
	"github.com/mattsolo1/grove-book/pkg/nav"
)

// ErrInvalidConfig is returned when a loaded site config fails validation.
var ErrInvalidConfig = errors.New("invalid site config")

// Broken link policies understood by the renderer.
const (
	PolicyIgnore = "ignore"
	PolicyLog    = "log"
	PolicyWarn   = "warn"
	PolicyThrow  = "throw"
)

// Config is the site-wide configuration of a book. Apart from the docs
// location and the navbar doc items it is passed through to the renderer.
type Config struct {
	Title                 string `mapstructure:"title"`
	Tagline               string `mapstructure:"tagline"`
	Favicon               string `mapstructure:"favicon"`
	URL                   string `mapstructure:"url"`
	BaseURL               string `mapstructure:"base_url"`
	OrganizationName      string `mapstructure:"organization_name"`
	ProjectName           string `mapstructure:"project_name"`
	DocsDir               string `mapstructure:"docs_dir"`
	SidebarPath           string `mapstructure:"sidebar_path"`
	RouteBasePath         string `mapstructure:"route_base_path"`
	IncludeDrafts         bool   `mapstructure:"include_drafts"`
	OnBrokenLinks         string `mapstructure:"on_broken_links"`
	OnBrokenMarkdownLinks string `mapstructure:"on_broken_markdown_links"`

	I18n   I18nConfig   `mapstructure:"i18n"`
	Navbar NavbarConfig `mapstructure:"navbar"`
	Footer FooterConfig `mapstructure:"footer"`

	// File the config was loaded from, empty for Default.
	Source string `mapstructure:"-"`
}

// I18nConfig lists the locales of the site.
type I18nConfig struct {
	DefaultLocale string   `mapstructure:"default_locale"`
	Locales       []string `mapstructure:"locales"`
}

// NavbarConfig describes the top navigation bar.
type NavbarConfig struct {
	Title string       `mapstructure:"title"`
	Logo  Logo         `mapstructure:"logo"`
	Items []NavbarItem `mapstructure:"items"`
}

// Logo is an image shown in the navbar.
type Logo struct {
	Alt string `mapstructure:"alt"`
	Src string `mapstructure:"src"`
}

// NavbarItem is one navbar link. Items of type "doc" point at a document,
// other items carry an Href.
type NavbarItem struct {
	Type     string `mapstructure:"type"`
	DocID    string `mapstructure:"doc_id"`
	Label    string `mapstructure:"label"`
	Href     string `mapstructure:"href"`
	Position string `mapstructure:"position"` // "left" or "right"
}

// FooterConfig describes the page footer. Copyright may contain a {year} placeholder.
type FooterConfig struct {
	Style     string `mapstructure:"style"`
	Copyright string `mapstructure:"copyright"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "/")
	v.SetDefault("docs_dir", "docs")
	v.SetDefault("sidebar_path", "sidebars.yml")
	v.SetDefault("route_base_path", "/")
	v.SetDefault("include_drafts", false)
	v.SetDefault("on_broken_links", PolicyWarn)
	v.SetDefault("on_broken_markdown_links", PolicyWarn)
	v.SetDefault("i18n.default_locale", "en")
	v.SetDefault("i18n.locales", []string{"en"})
}

// Default returns a config holding only default values.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads the site config at path. Values can be overridden from the
// environment with the BOOK_ prefix, e.g. BOOK_DOCS_DIR. Relative docs and
// sidebar paths are resolved against the config file's directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read site config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode site config: %w", err)
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolve site config path: %w", err)
	}
	cfg.Source = abs
	dir := filepath.Dir(abs)
	cfg.DocsDir = resolvePath(dir, cfg.DocsDir)
	cfg.SidebarPath = resolvePath(dir, cfg.SidebarPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// Validate checks the config for values the renderer cannot work with.
func (c *Config) Validate() error {
	if c.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidConfig)
	}
	if !strings.HasPrefix(c.BaseURL, "/") || !strings.HasSuffix(c.BaseURL, "/") {
		return fmt.Errorf("%w: base_url %q must start and end with '/'", ErrInvalidConfig, c.BaseURL)
	}
	for key, policy := range map[string]string{
		"on_broken_links":          c.OnBrokenLinks,
		"on_broken_markdown_links": c.OnBrokenMarkdownLinks,
	} {
		switch policy {
		case PolicyIgnore, PolicyLog, PolicyWarn, PolicyThrow:
		default:
			return fmt.Errorf("%w: %s must be one of ignore, log, warn, throw; got %q", ErrInvalidConfig, key, policy)
		}
	}
	if len(c.I18n.Locales) > 0 && !contains(c.I18n.Locales, c.I18n.DefaultLocale) {
		return fmt.Errorf("%w: default locale %q is not in locales %v", ErrInvalidConfig, c.I18n.DefaultLocale, c.I18n.Locales)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// NavbarTree is the tree name reported by CheckNavbar errors.
const NavbarTree = "navbar"

// CheckNavbar verifies that every navbar doc item references a known document.
func (c *Config) CheckNavbar(known nav.DocSet) error {
	for i, item := range c.Navbar.Items {
		if item.Type != "doc" {
			continue
		}
		id := nav.DocumentID(item.DocID)
		if !known.Has(id) {
			return &nav.ValidationError{
				Kind: nav.ErrDanglingReference,
				Tree: NavbarTree,
				ID:   id,
				Path: nav.Path{i},
			}
		}
	}
	return nil
}

// Permalink returns the URL path of doc. A slug starting with "/" is taken
// relative to the route base path, other slugs relative to the doc's directory.
// The root page keeps its trailing slash so it stays under BaseURL.
func (c *Config) Permalink(doc *models.Document) string {
	slug := doc.Slug
	switch {
	case slug == "":
		slug = string(doc.ID)
	case !strings.HasPrefix(slug, "/"):
		slug = path.Join(doc.Dir(), slug)
	}
	root := path.Join("/", c.BaseURL, c.RouteBasePath)
	p := path.Join(root, slug)
	if p == root && root != "/" {
		p += "/"
	}
	return p
}

// Copyright returns the footer copyright with {year} expanded.
func (c *Config) Copyright(year int) string {
	return strings.ReplaceAll(c.Footer.Copyright, "{year}", strconv.Itoa(year))
}
