package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mcncl/jsettings/internal/config"
	"github.com/mcncl/jsettings/internal/errors"
	"github.com/mcncl/jsettings/internal/formatter"
	"github.com/mcncl/jsettings/internal/geometry"
	"github.com/mcncl/jsettings/internal/models"
	"github.com/mcncl/jsettings/internal/notify"
	"github.com/mcncl/jsettings/internal/parser"
	"github.com/mcncl/jsettings/internal/settings"
	"github.com/tidwall/gjson"
)

// CLI defines the command-line interface
var CLI struct {
	Config   string           `help:"Path to config file. Defaults to .jsettings.yml in the working directory or a parent." short:"c" type:"path"`
	Debug    bool             `help:"Enable debug logging." short:"d"`
	NoAtomic bool             `help:"Write files in place instead of replacing them through a staging file."`
	Header   string           `help:"Comment header for written files that have none. Overrides default_comment." name:"default-comment"`
	Version  kong.VersionFlag `help:"Show version information." short:"v"`

	Fmt     FmtCmd     `cmd:"" help:"Rewrite a settings file in canonical layout."`
	Get     GetCmd     `cmd:"" help:"Print the value stored at KEY as JSON."`
	Set     SetCmd     `cmd:"" help:"Store VALUE at KEY, creating the file if needed."`
	Delete  DeleteCmd  `cmd:"" help:"Remove the value stored at KEY."`
	Comment CommentCmd `cmd:"" help:"Print or replace the comment header."`
	Rect    RectCmd    `cmd:"" help:"Print or store a window geometry."`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Out    io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	// Parse CLI arguments with Kong
	app := kong.Must(&CLI,
		kong.Name("jsettings"),
		kong.Description("Inspect and edit commented JSON settings files"),
		kong.UsageOnError(),
		kong.Vars{"version": "jsettings version " + Version},
	)

	// Parse the command line arguments
	kctx, err := app.Parse(os.Args[1:])
	if err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		app.FatalIfErrorf(err)
	}

	ctx, err := newContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	if err := kctx.Run(ctx); err != nil {
		// Use our custom error handling to provide user-friendly error messages
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))

		// Show help on error
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsettings --help\n")

		os.Exit(1)
	}
}

// newContext loads the configuration and applies the global flags
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, config.Overrides{
		NoAtomic: CLI.NoAtomic,
		Debug:    CLI.Debug,
		Comment:  CLI.Header,
	})
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("cannot load '%s'", configPath), err)
	}

	ctx := &Context{Debug: cfg.Dev.Debug, Config: cfg, Out: os.Stdout}
	if configPath != "" {
		ctx.debugf("using config %s", configPath)
	}
	return ctx, nil
}

func (ctx *Context) debugf(format string, args ...interface{}) {
	if ctx.Debug {
		fmt.Fprintf(os.Stderr, "debug: "+format+"\n", args...)
	}
}

// open loads a settings file. Read-only commands require the file to exist,
// since loading itself never fails.
func (ctx *Context) open(path string, mustExist bool) (*settings.Document, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil, errors.NewInputError(fmt.Sprintf("'%s' is a directory", path), nil)
	case err != nil && (mustExist || !os.IsNotExist(err)):
		return nil, errors.NewInputError(fmt.Sprintf("cannot read '%s'", path), err)
	case err != nil:
		ctx.debugf("%s does not exist, starting from an empty object", path)
	}

	doc := settings.Load(path)
	if ctx.Debug {
		doc.Subscribe(func(change notify.Change) {
			ctx.debugf("%s change key=%q path=%s", change.Type, change.Key, change.Path)
		})
	}
	return doc, nil
}

// save writes doc to path, or back to its source when path is empty
func (ctx *Context) save(doc *settings.Document, path string) error {
	if doc.Comment() == "" && ctx.Config.DefaultComment != "" {
		doc.SetComment(ctx.Config.DefaultComment)
	}
	return doc.Save(path, ctx.Config.Atomic)
}

// key resolves a command-line key and rejects read-only paths when writing
func (ctx *Context) key(raw string, writing bool) (string, error) {
	key := ctx.Config.ResolveKey(raw)
	if key != raw {
		ctx.debugf("key %q resolved to %q", raw, key)
	}
	if !writing {
		return key, nil
	}
	if rule, readOnly := ctx.Config.IsReadOnly(key); readOnly {
		message := fmt.Sprintf("'%s' is read-only", key)
		if rule.Comment != "" {
			message += " (" + rule.Comment + ")"
		}
		return "", errors.NewValueError(message, errors.ErrReadOnlyKey)
	}
	return key, nil
}

// print writes a value as tab-indented JSON
func (ctx *Context) print(value models.JSONValue) error {
	out, err := formatter.NewFormatter().Format(value)
	if err != nil {
		return errors.NewEncodeError("failed to serialize value", err)
	}
	_, err = ctx.Out.Write(out)
	return err
}

// FmtCmd rewrites a file in canonical layout
type FmtCmd struct {
	File   string `arg:"" help:"Settings file." type:"path"`
	Output string `help:"Write to this path instead of FILE." short:"o" type:"path"`
}

// Run executes the fmt command
func (c *FmtCmd) Run(ctx *Context) error {
	doc, err := ctx.open(c.File, true)
	if err != nil {
		return err
	}
	if err := ctx.save(doc, c.Output); err != nil {
		return err
	}

	target := c.Output
	if target == "" {
		target = c.File
	}
	fmt.Fprintf(os.Stderr, "Formatted settings written to %s\n", target)
	return nil
}

// GetCmd prints a value
type GetCmd struct {
	File string `arg:"" help:"Settings file." type:"path"`
	Key  string `arg:"" help:"Dotted key path, e.g. Browser.HomePage or Search.0."`
}

// Run executes the get command
func (c *GetCmd) Run(ctx *Context) error {
	doc, err := ctx.open(c.File, true)
	if err != nil {
		return err
	}
	key, err := ctx.key(c.Key, false)
	if err != nil {
		return err
	}

	value, ok := doc.Get(key)
	if !ok {
		return errors.NewValueError(fmt.Sprintf("no value at '%s'", key), errors.ErrKeyNotFound)
	}
	return ctx.print(value)
}

// SetCmd stores a value
type SetCmd struct {
	File   string `arg:"" help:"Settings file." type:"path"`
	Key    string `arg:"" help:"Dotted key path. Use -1 as the last segment to append to an array."`
	Value  string `arg:"" help:"JSON value. Text that is not valid JSON is stored as a string."`
	String bool   `help:"Store VALUE as a string without parsing it." short:"s"`
}

// Run executes the set command
func (c *SetCmd) Run(ctx *Context) error {
	doc, err := ctx.open(c.File, false)
	if err != nil {
		return err
	}
	key, err := ctx.key(c.Key, true)
	if err != nil {
		return err
	}

	if err := doc.Set(key, parseValue(c.Value, c.String)); err != nil {
		return err
	}
	return ctx.save(doc, "")
}

// parseValue reads a command-line value as JSON, falling back to a string
func parseValue(raw string, asString bool) models.JSONValue {
	if asString || !gjson.Valid(raw) {
		return raw
	}
	return parser.FromResult(gjson.Parse(raw))
}

// DeleteCmd removes a value
type DeleteCmd struct {
	File string `arg:"" help:"Settings file." type:"path"`
	Key  string `arg:"" help:"Dotted key path."`
}

// Run executes the delete command
func (c *DeleteCmd) Run(ctx *Context) error {
	doc, err := ctx.open(c.File, true)
	if err != nil {
		return err
	}
	key, err := ctx.key(c.Key, true)
	if err != nil {
		return err
	}

	if err := doc.Delete(key); err != nil {
		return err
	}
	return ctx.save(doc, "")
}

// CommentCmd prints or replaces the comment header
type CommentCmd struct {
	File  string `arg:"" help:"Settings file." type:"path"`
	Set   string `help:"Replace the header with this text. Use \\n to separate lines."`
	Clear bool   `help:"Remove the header."`
}

// Run executes the comment command
func (c *CommentCmd) Run(ctx *Context) error {
	if c.Set != "" && c.Clear {
		return errors.NewInputError("--set and --clear cannot be combined", nil)
	}

	doc, err := ctx.open(c.File, c.Set == "")
	if err != nil {
		return err
	}

	switch {
	case c.Clear:
		doc.SetComment("")
	case c.Set != "":
		doc.SetComment(strings.ReplaceAll(c.Set, `\n`, "\n"))
	default:
		if doc.Comment() != "" {
			fmt.Fprintln(ctx.Out, doc.Comment())
		}
		return nil
	}
	return doc.Save("", ctx.Config.Atomic)
}

// RectCmd prints or stores a window geometry
type RectCmd struct {
	File string `arg:"" help:"Settings file." type:"path"`
	Key  string `arg:"" help:"Dotted key path of the geometry."`
	Set  string `help:"Store this geometry, written as \"x, y, width, height\"."`
}

// Run executes the rect command
func (c *RectCmd) Run(ctx *Context) error {
	if c.Set == "" {
		doc, err := ctx.open(c.File, true)
		if err != nil {
			return err
		}
		key, err := ctx.key(c.Key, false)
		if err != nil {
			return err
		}
		r := doc.Rectangle(key)
		if r.IsNull() {
			ctx.debugf("no usable geometry at %q", key)
		}
		fmt.Fprintf(ctx.Out, "x=%d y=%d width=%d height=%d\n", r.X, r.Y, r.Width, r.Height)
		return nil
	}

	r, err := geometry.ParseRectangle(c.Set)
	if err != nil {
		return errors.NewInputError(fmt.Sprintf("invalid geometry '%s', want \"x, y, width, height\"", c.Set), err)
	}

	doc, err := ctx.open(c.File, false)
	if err != nil {
		return err
	}
	key, err := ctx.key(c.Key, true)
	if err != nil {
		return err
	}
	if err := doc.SetRectangle(key, r); err != nil {
		return err
	}
	return ctx.save(doc, "")
}
