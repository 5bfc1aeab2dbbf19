package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/reoring/modelkit"
	"github.com/reoring/modelkit/examples/user"
	"github.com/reoring/modelkit/i18n"
	"github.com/reoring/modelkit/openapi"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("modelkit: ")
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	ctx := context.Background()
	var err error
	switch os.Args[1] {
	case "validate":
		err = validateCmd(ctx, os.Args[2:], os.Stdout)
	case "schema":
		err = schemaCmd(os.Args[2:], os.Stdout)
	case "prompt":
		err = promptCmd(ctx, os.Args[2:], os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		if _, ok := modelkit.AsIssues(err); ok {
			os.Exit(1)
		}
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "modelkit CLI\n\nUsage:\n  modelkit validate [-f file|-] [-format json|yaml] [-o json|yaml|repr] [-fail-fast] [-lang en|ja]\n  modelkit schema [-openapi]\n  modelkit prompt [-o json|yaml|repr] [-lang en|ja]\n\nNotes:\n  - Documents are validated against the User model; issues are printed as JSON on stderr.")
}

func validateCmd(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var file, format, out, lang string
	var failFast, verbose bool
	fs.StringVar(&file, "f", "-", "input document (- for stdin)")
	fs.StringVar(&format, "format", "", "input format: json or yaml (default: from file extension, else json)")
	fs.StringVar(&out, "o", "json", "output: json, yaml or repr")
	fs.BoolVar(&failFast, "fail-fast", false, "stop at the first issue")
	fs.StringVar(&lang, "lang", "en", "message language")
	fs.BoolVar(&verbose, "v", false, "enable verbose logs")
	_ = fs.Parse(args)
	i18n.SetLanguage(lang)

	logf := func(format string, a ...any) {
		if verbose {
			log.Printf(format, a...)
		}
	}

	r, closeFn, err := openInput(file)
	if err != nil {
		return err
	}
	defer closeFn()
	src := sourceFor(r, file, format)
	logf("validate: file=%s format=%s fail-fast=%v", file, src.Format(), failFast)

	rec, err := modelkit.ValidateFrom(ctx, user.Schema, src, modelkit.ValidateOpt{FailFast: failFast})
	if err != nil {
		if iss, ok := modelkit.AsIssues(err); ok {
			logf("validate: %d issue(s)", len(iss))
			reportIssues(iss)
		}
		return err
	}
	return writeRecord(ctx, stdout, rec, out)
}

func schemaCmd(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	var asOpenAPI bool
	fs.BoolVar(&asOpenAPI, "openapi", false, "emit OpenAPI 3 components instead of JSON Schema")
	_ = fs.Parse(args)

	var doc any
	if asOpenAPI {
		comps, err := openapi.Components(user.Schema)
		if err != nil {
			return err
		}
		doc = map[string]any{"components": comps}
	} else {
		js, err := user.Schema.JSONSchema()
		if err != nil {
			return err
		}
		doc = js
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(b))
	return err
}

func promptCmd(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("prompt", flag.ExitOnError)
	var out, lang string
	fs.StringVar(&out, "o", "json", "output: json, yaml or repr")
	fs.StringVar(&lang, "lang", "en", "message language")
	_ = fs.Parse(args)
	i18n.SetLanguage(lang)

	raw, err := collect(ctx, surveyAsker{}, user.Schema)
	if err != nil {
		return err
	}
	rec, err := modelkit.Validate(ctx, user.Schema, raw)
	if err != nil {
		if iss, ok := modelkit.AsIssues(err); ok {
			reportIssues(iss)
		}
		return err
	}
	return writeRecord(ctx, stdout, rec, out)
}

func openInput(file string) (io.Reader, func(), error) {
	if file == "" || file == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func sourceFor(r io.Reader, file, format string) modelkit.Source {
	if format == "" {
		lower := strings.ToLower(file)
		if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
			format = "yaml"
		}
	}
	if format == "yaml" {
		return modelkit.YAMLReader(r)
	}
	return modelkit.JSONReader(r)
}

func writeRecord(ctx context.Context, w io.Writer, rec *modelkit.Record, out string) error {
	var (
		b   []byte
		err error
	)
	switch out {
	case "repr":
		_, err = fmt.Fprintln(w, rec.String())
		return err
	case "yaml":
		b, err = modelkit.DumpYAML(ctx, user.Schema, rec)
	default:
		b, err = modelkit.DumpJSON(ctx, user.Schema, rec)
		b = append(b, '\n')
	}
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func reportIssues(iss modelkit.Issues) {
	b, err := json.MarshalIndent(iss, "", "  ")
	if err != nil {
		log.Printf("issues: %v", iss)
		return
	}
	fmt.Fprintln(os.Stderr, string(b))
}
