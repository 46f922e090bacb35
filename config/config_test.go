package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pontaoski/tawaqbe/parser"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	err := ioutil.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
	be.Err(t, err, nil)
}

func TestLoadDefaults(t *testing.T) {
	opts, err := Load(t.TempDir())
	be.Err(t, err, nil)
	be.Equal(t, opts, Options{Emit: EmitQBE})
	be.Equal(t, opts.OutputPath(), "out.ssa")
	be.Equal(t, opts.Parser(), parser.Options{})
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, YAMLFile, "package: demo\noutput: demo.ll\nemit: llvm\nlexical-scoping: true\n")

	opts, err := Load(dir)
	be.Err(t, err, nil)
	be.Equal(t, opts, Options{
		Package:        "demo",
		Output:         "demo.ll",
		Emit:           EmitLLVM,
		LexicalScoping: true,
	})
	be.Equal(t, opts.Parser(), parser.Options{LexicalScoping: true})
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, TOMLFile, "[module]\npackage = \"demo\"\nleft-associative = true\n")

	opts, err := Load(dir)
	be.Err(t, err, nil)
	be.Equal(t, opts.Package, "demo")
	be.Equal(t, opts.Emit, EmitQBE)
	be.Equal(t, opts.Parser(), parser.Options{LeftAssociative: true})
}

func TestYAMLWinsOverTOML(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, YAMLFile, "package: from-yaml\n")
	write(t, dir, TOMLFile, "[module]\npackage = \"from-toml\"\n")

	opts, err := Load(dir)
	be.Err(t, err, nil)
	be.Equal(t, opts.Package, "from-yaml")
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, YAMLFile, "package: [unterminated\n")
	_, err := Load(dir)
	be.Err(t, err, "error reading tawa.yaml")

	dir = t.TempDir()
	write(t, dir, TOMLFile, "[module\n")
	_, err = Load(dir)
	be.Err(t, err, "error reading tawa.toml")

	dir = t.TempDir()
	write(t, dir, YAMLFile, "emit: wasm\n")
	_, err = Load(dir)
	be.Err(t, err, `unknown emit target "wasm"`)
}

func TestOutputPath(t *testing.T) {
	be.Equal(t, Options{Emit: EmitLLVM}.OutputPath(), "out.ll")
	be.Equal(t, Options{Emit: EmitLLVM, Output: "a.out.ll"}.OutputPath(), "a.out.ll")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	be.Err(t, Init(dir, ""), "no module name provided")

	be.Err(t, Init(dir, "demo"), nil)

	data, err := ioutil.ReadFile(filepath.Join(dir, YAMLFile))
	be.Err(t, err, nil)
	be.Equal(t, string(data), "package: demo\nemit: qbe\n")

	opts, err := Load(dir)
	be.Err(t, err, nil)
	be.Equal(t, opts, Options{Package: "demo", Emit: EmitQBE})
}
