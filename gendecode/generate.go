package main

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"
)

// descriptionPath is where the description lives under the project root.
const descriptionPath = "isa/isa.yaml"

// Config is everything one generator run needs. It is filled in once from
// the command line and not changed afterwards.
type Config struct {
	RootPath     string
	TemplatePath string
	OutputPath   string

	// Package is handed to the template as .Package.
	Package string

	// Check compares the rendered output with OutputPath instead of
	// writing it.
	Check bool

	// Format runs the rendered output through gofmt.
	Format bool

	// Dump logs the loaded description at debug level.
	Dump bool
}

func (c Config) DescriptionPath() string {
	return filepath.Join(c.RootPath, filepath.FromSlash(descriptionPath))
}

type Generator struct {
	cfg    Config
	log    zerolog.Logger
	stdout io.Writer
}

func NewGenerator(cfg Config, log zerolog.Logger, stdout io.Writer) *Generator {
	return &Generator{cfg: cfg, log: log, stdout: stdout}
}

// templateData is the value templates are executed against.
type templateData struct {
	Package string
	Source  string
	ISA     *ISA
}

// Run renders the decoder and either writes it or, in check mode, compares
// it with the file already on disk. Nothing is written unless rendering
// succeeded completely.
func (g *Generator) Run() error {
	out, err := g.Render()
	if err != nil {
		return err
	}
	if g.cfg.Check {
		return g.check(out)
	}
	if err := writeFileAtomic(g.cfg.OutputPath, out); err != nil {
		return fmt.Errorf("failed to write %s: %w", g.cfg.OutputPath, err)
	}
	g.log.Info().Str("output", g.cfg.OutputPath).Int("bytes", len(out)).Msg("wrote decoder")
	return nil
}

// Render loads the description and returns the generated source.
func (g *Generator) Render() ([]byte, error) {
	if !token.IsIdentifier(g.cfg.Package) {
		return nil, fmt.Errorf("invalid package name %q", g.cfg.Package)
	}

	loaderLog := g.log.With().Str("component", "loader").Logger()
	isa, err := loadDescription(g.cfg.DescriptionPath())
	if err != nil {
		return nil, err
	}
	loaderLog.Info().
		Int("fields", len(isa.Fields)).
		Int("instructions", len(isa.Instructions)).
		Int("reachable", len(isa.Reachable)).
		Msg("loaded description")
	if g.cfg.Dump {
		loaderLog.Debug().Msg(dumpConfig.Sdump(isa))
	}

	lintLog := g.log.With().Str("component", "lint").Logger()
	for _, w := range lint(isa) {
		lintLog.Warn().Int("line", w.Line).Msg(w.Msg)
	}

	emitLog := g.log.With().Str("component", "emit").Logger()
	for _, ins := range isa.Reachable {
		for _, f := range ins.Fields {
			if f.Category == FieldOther {
				emitLog.Debug().Str("instruction", ins.Mnemonic).Str("field", f.Name).Msg("field has no slot on the decoded instruction")
			}
		}
	}

	text, err := os.ReadFile(g.cfg.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	out, err := renderTemplate(filepath.Base(g.cfg.TemplatePath), string(text), templateData{
		Package: g.cfg.Package,
		Source:  descriptionPath,
		ISA:     isa,
	})
	if err != nil {
		return nil, err
	}

	if g.cfg.Format {
		formatted, err := format.Source(out)
		if err != nil {
			emitLog.Debug().Msg(string(out))
			return nil, fmt.Errorf("failed to format generated source: %w", err)
		}
		out = formatted
	}
	return out, nil
}

// templateFuncs is the vocabulary templates use to splice generated code.
func templateFuncs(isa *ISA) template.FuncMap {
	return template.FuncMap{
		"dispatch": func() string {
			var buf bytes.Buffer
			emitDispatch(&buf, isa.Tree, 1)
			return buf.String()
		},
		"routine": func(ins *Instruction) string {
			var buf bytes.Buffer
			emitRoutine(&buf, ins)
			return buf.String()
		},
		"opName":      opName,
		"routineName": routineName,
		"mask": func(r BitRange) (string, error) {
			m, err := Mask(r)
			if err != nil {
				return "", err
			}
			return m.Hex(), nil
		},
	}
}

func renderTemplate(name, text string, data templateData) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(templateFuncs(data.ISA)).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) check(out []byte) error {
	current, err := os.ReadFile(g.cfg.OutputPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if bytes.Equal(current, out) {
		g.log.Info().Str("output", g.cfg.OutputPath).Msg("decoder is up to date")
		return nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(out)),
		FromFile: g.cfg.OutputPath,
		ToFile:   "generated",
		Context:  3,
	})
	if err != nil {
		return err
	}
	fmt.Fprint(g.stdout, diff)
	return fmt.Errorf("%s: %w", g.cfg.OutputPath, ErrOutOfDate)
}

// writeFileAtomic writes data next to filename and renames it into place,
// so a failed run never leaves a partial file behind.
func writeFileAtomic(filename string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if _, err = f.Write(data); err != nil {
		return err
	}
	if err = f.Chmod(0o644); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), filename)
}
