// Package config loads the optional module file that sits next to the sources
// and merges it with command-line settings.
package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/pontaoski/tawaqbe/parser"
	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

const (
	YAMLFile = "tawa.yaml"
	TOMLFile = "tawa.toml"
)

const (
	EmitQBE  = "qbe"
	EmitLLVM = "llvm"
)

// Options is everything a build needs to know besides the source itself.
type Options struct {
	Package         string `yaml:"package" toml:"package"`
	Output          string `yaml:"output,omitempty" toml:"output,omitempty"`
	Emit            string `yaml:"emit,omitempty" toml:"emit,omitempty"`
	LexicalScoping  bool   `yaml:"lexical-scoping,omitempty" toml:"lexical-scoping,omitempty"`
	LeftAssociative bool   `yaml:"left-associative,omitempty" toml:"left-associative,omitempty"`
}

// tomlModuleFile puts the keys under a [module] table.
type tomlModuleFile struct {
	Module *Options `toml:"module"`
}

func Default() Options {
	return Options{Emit: EmitQBE}
}

// Parser returns the settings the parser cares about.
func (o Options) Parser() parser.Options {
	return parser.Options{
		LexicalScoping:  o.LexicalScoping,
		LeftAssociative: o.LeftAssociative,
	}
}

// OutputPath is the configured output, or out.ssa / out.ll depending on the
// backend.
func (o Options) OutputPath() string {
	if o.Output != "" {
		return o.Output
	}
	if o.Emit == EmitLLVM {
		return "out.ll"
	}
	return "out.ssa"
}

func (o Options) Validate() error {
	switch o.Emit {
	case EmitQBE, EmitLLVM:
		return nil
	}
	return fmt.Errorf("unknown emit target %q, expected %s or %s", o.Emit, EmitQBE, EmitLLVM)
}

// Load reads the module file in dir. tawa.yaml is preferred over tawa.toml;
// without either the defaults are returned.
func Load(dir string) (Options, error) {
	opts := Default()

	data, err := ioutil.ReadFile(filepath.Join(dir, YAMLFile))
	if err == nil {
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return opts, tracerr.Errorf("error reading %s: %w", YAMLFile, err)
		}
		return opts, opts.Validate()
	} else if !os.IsNotExist(err) {
		return opts, tracerr.Wrap(err)
	}

	data, err = ioutil.ReadFile(filepath.Join(dir, TOMLFile))
	if err == nil {
		var doc tomlModuleFile
		if err := toml.Unmarshal(data, &doc); err != nil {
			return opts, tracerr.Errorf("error reading %s: %w", TOMLFile, err)
		}
		if doc.Module != nil {
			opts = *doc.Module
			if opts.Emit == "" {
				opts.Emit = EmitQBE
			}
		}
		return opts, opts.Validate()
	} else if !os.IsNotExist(err) {
		return opts, tracerr.Wrap(err)
	}

	return opts, nil
}

// Init writes a fresh tawa.yaml for the package name into dir.
func Init(dir, name string) error {
	if name == "" {
		return tracerr.New("no module name provided")
	}

	out, err := yaml.Marshal(Options{Package: name, Emit: EmitQBE})
	if err != nil {
		return tracerr.Errorf("error creating %s: %w", YAMLFile, err)
	}

	err = ioutil.WriteFile(filepath.Join(dir, YAMLFile), out, 0644)
	if err != nil {
		return tracerr.Errorf("error creating %s: %w", YAMLFile, err)
	}

	return nil
}
