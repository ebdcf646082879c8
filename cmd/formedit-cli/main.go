package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	formedit "github.com/goliatone/go-formedit"
	"github.com/goliatone/go-formedit/pkg/engine"
	"github.com/goliatone/go-formedit/pkg/formdata"
	"github.com/goliatone/go-formedit/pkg/render"
	"github.com/goliatone/go-formedit/pkg/renderers/tui"
	"github.com/goliatone/go-formedit/pkg/schema"
)

func main() {
	source := flag.String("schema", "schema.json", "JSON Schema document path or URL")
	dataPath := flag.String("data", "", "initial data JSON file (optional)")
	operation := flag.String("operation", "", "treat the schema as an OpenAPI document and edit this operation's request body")
	mode := flag.String("mode", "html", "output mode: html or tui")
	output := flag.String("output", "", "output file (stdout if empty)")
	flag.Parse()

	ctx := context.Background()

	doc, err := loadDocument(ctx, *source)
	if err != nil {
		log.Fatalf("load schema: %v", err)
	}

	var data any
	if *dataPath != "" {
		raw, err := os.ReadFile(*dataPath)
		if err != nil {
			log.Fatalf("read data: %v", err)
		}
		parsed, ok := formdata.DecodeRaw(raw)
		if !ok {
			log.Fatalf("parse data: %s is not a JSON object", *dataPath)
		}
		data = parsed
	}

	eng, err := mount(ctx, doc, *operation, data)
	if err != nil {
		log.Fatalf("mount form: %v", err)
	}
	defer eng.Destroy()

	var out []byte
	switch *mode {
	case "tui":
		filler := tui.New()
		out, err = filler.Run(ctx, eng)
	default:
		out, err = formedit.RenderHTML(ctx, eng, nil, render.Options{})
	}
	if err != nil {
		log.Fatalf("render form: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, out, 0o644); err != nil {
			log.Fatalf("write output: %v", err)
		}
		fmt.Printf("Output written to %s\n", *output)
	} else {
		fmt.Println(string(out))
	}
}

func mount(ctx context.Context, doc schema.Document, operation string, data any) (*engine.Engine, error) {
	options := []engine.Option{engine.WithScheduler(engine.Immediate{})}
	if operation != "" {
		return formedit.MountOperation(ctx, doc, operation, data, options...)
	}
	return formedit.Mount(doc, data, options...)
}

func loadDocument(ctx context.Context, raw string) (schema.Document, error) {
	path := strings.TrimSpace(raw)
	var src schema.Source
	var options schema.LoaderOptions
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		src = schema.SourceFromURL(path)
		options.AllowHTTPFallback = true
	} else {
		src = schema.SourceFromFile(path)
	}
	return formedit.NewLoader(options).Load(ctx, src)
}
