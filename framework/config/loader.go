package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for a resource extension no loader
// handles.
var ErrUnsupportedFormat = errors.New("config: unsupported properties format")

// FileLoader parses one resource format into flat dotted keys.
type FileLoader interface {
	Load(r io.Reader) (map[string]string, error)
	Extensions() []string
}

var loaders = map[string]FileLoader{}

func init() {
	RegisterLoader(PropertiesLoader{})
	RegisterLoader(YAMLLoader{})
}

// RegisterLoader makes l handle its extensions, replacing any previous
// loader for them.
func RegisterLoader(l FileLoader) {
	for _, ext := range l.Extensions() {
		loaders[ext] = l
	}
}

// ReadProperties loads the resource at location with the loader for its
// extension.
func ReadProperties(location string) (map[string]string, error) {
	ext := strings.ToLower(filepath.Ext(location))
	l, ok := loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, location)
	}

	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", location, err)
	}
	defer f.Close()

	props, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", location, err)
	}
	return props, nil
}

// PropertiesLoader reads key=value lines. '#' starts a comment.
type PropertiesLoader struct{}

func (PropertiesLoader) Extensions() []string { return []string{".properties", ".env"} }

func (PropertiesLoader) Load(r io.Reader) (map[string]string, error) {
	return godotenv.Parse(r)
}

// YAMLLoader reads a YAML document and flattens nested mappings into
// dotted keys:
//
//	scan:
//	  package: github.com/acme/shop   →   scan.package=github.com/acme/shop
type YAMLLoader struct{}

func (YAMLLoader) Extensions() []string { return []string{".yaml", ".yml"} }

func (YAMLLoader) Load(r io.Reader) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	out := make(map[string]string)
	flatten("", doc, out)
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}
