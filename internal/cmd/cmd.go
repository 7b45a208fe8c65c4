package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/philipparndt/bambu3mf/internal/buildplan"
	"github.com/philipparndt/bambu3mf/internal/config"
	"github.com/philipparndt/bambu3mf/internal/extract"
	"github.com/philipparndt/bambu3mf/internal/inspect"
	"github.com/philipparndt/bambu3mf/internal/logger"
	"github.com/philipparndt/bambu3mf/internal/settings"
	"github.com/philipparndt/bambu3mf/internal/stl"
	"github.com/philipparndt/bambu3mf/internal/ui"
	"github.com/philipparndt/bambu3mf/version"
)

// Globals are flags shared by all commands
type Globals struct {
	Config   string `help:"Config file (default: ./bambu3mf.yaml, then the user config directory)" type:"path"`
	LogLevel string `help:"Log level: debug, info, warn, error" name:"log-level"`
	LogFile  string `help:"Also write JSON logs to this file (rotated)" name:"log-file" type:"path"`
	Verbose  bool   `help:"Show each build step" short:"v"`
}

type CLI struct {
	Globals

	Convert    *ConvertCmd    `cmd:"" help:"Convert an STL file into a Bambu Studio 3MF project"`
	Presets    *PresetsCmd    `cmd:"" help:"List available presets"`
	Settings   *SettingsCmd   `cmd:"" help:"List common print settings for --setting"`
	Inspect    *InspectCmd    `cmd:"" help:"Inspect a 3MF file and show its contents"`
	Extract    *ExtractCmd    `cmd:"" help:"Extract the meshes of a 3MF file as STL files"`
	ExportSTL  *ExportSTLCmd  `cmd:"" name:"export-stl" help:"Decode an STL file and write the indexed mesh back out"`
	Version    *VersionCmd    `cmd:"" help:"Show version information"`
	Completion *CompletionCmd `cmd:"" help:"Generate shell completion script"`
}

// setup loads the configuration, applies the global flags on top of it and
// initialises logging
func (g *Globals) setup() (*config.Config, error) {
	cfg := config.Default()

	configPath := g.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	if configPath != "" {
		loaded, err := config.NewLoader().Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
		cfg = loaded
	}

	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	if g.LogFile != "" {
		cfg.Logging.File = g.LogFile
	}

	if err := logger.Init(strings.ToLower(cfg.Logging.Level), cfg.Logging.File); err != nil {
		return nil, err
	}
	ui.SetVerbose(g.Verbose)

	if configPath != "" {
		logger.Log.Debug("config loaded", zap.String("path", configPath))
	}
	return cfg, nil
}

type ConvertCmd struct {
	STL          string   `arg:"" help:"Input STL file (ASCII or binary)" type:"path"`
	Output       string   `arg:"" help:"Output 3MF file" type:"path"`
	Preset       string   `help:"Print preset (see 'bambu3mf presets')" short:"p"`
	Setting      []string `help:"Override setting as key=value (can be repeated)" short:"s" sep:"none"`
	BaseTemplate string   `help:"Bambu Studio settings JSON used as base (default: built-in Bambu Lab A1 template)" name:"base-template" type:"path"`
	Name         string   `help:"Object name (default: STL file name)"`
	Open         bool     `help:"Open the result file in the default application"`
}

// Help adds additional help text with examples
func (c *ConvertCmd) Help() string {
	return renderConvertHelp()
}

// openFile opens a file in the default application for the current platform
func openFile(filepath string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", filepath)
	case "linux":
		cmd = exec.Command("xdg-open", filepath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", filepath)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

func (c *ConvertCmd) Run(globals *Globals) error {
	cfg, err := globals.setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	preset := c.Preset
	if preset == "" {
		preset = cfg.Preset
	}
	baseTemplate := c.BaseTemplate
	if baseTemplate == "" {
		baseTemplate = cfg.BaseTemplate
	}

	ui.PrintTitle(fmt.Sprintf("Creating 3MF: %s → %s", c.STL, c.Output))
	ui.PrintKeyValue("Preset", preset)
	if len(c.Setting) > 0 {
		ui.PrintKeyValue("Overrides", fmt.Sprintf("%d", len(c.Setting)))
	}

	plan, err := buildplan.NewPlanner().CreatePlan(buildplan.Options{
		InputFile:    c.STL,
		OutputFile:   c.Output,
		ObjectName:   c.Name,
		BaseTemplate: baseTemplate,
		Preset:       preset,
		Presets:      cfg.Presets(),
		Overrides:    c.Setting,
	})
	if err != nil {
		return fmt.Errorf("failed to create build plan: %w", err)
	}

	result, err := plan.Execute()
	if err != nil {
		return err
	}

	printResult(result)

	if c.Open {
		if err := openFile(result.Summary.Path); err != nil {
			ui.PrintError("Failed to open file: " + err.Error())
		}
	}
	return nil
}

func printResult(result *buildplan.Result) {
	for _, w := range result.Warnings {
		ui.PrintWarning(w)
	}

	s := result.Settings
	support := "off"
	if s.StringOr(settings.KeyEnableSupport, "") == "1" {
		support = "on"
	}

	ui.PrintKeyValue("Layer height", s.StringOr(settings.KeyLayerHeight, "?")+"mm")
	ui.PrintKeyValue("Infill", fmt.Sprintf("%s (%s)",
		s.StringOr(settings.KeySparseInfillDensity, "?"), s.StringOr(settings.KeySparseInfillPattern, "?")))
	ui.PrintKeyValue("Walls", s.StringOr(settings.KeyWallLoops, "?"))
	ui.PrintKeyValue("Support", support)

	ui.PrintSeparator()
	ui.PrintKeyValue("Mesh", fmt.Sprintf("%s vertices, %s triangles",
		humanize.Comma(int64(result.Mesh.VertexCount())), humanize.Comma(int64(result.Mesh.TriangleCount()))))
	ui.PrintKeyValue("Size", fmt.Sprintf("%.1f x %.1f x %.1f mm", result.Box.Width(), result.Box.Height(), result.Box.Depth()))
	ui.PrintKeyValue("Output", fmt.Sprintf("%s (%s bytes)", result.Summary.Path, humanize.Comma(result.Summary.ByteSize)))
	ui.PrintSuccess("Done!")
}

type PresetsCmd struct{}

func (c *PresetsCmd) Run(globals *Globals) error {
	cfg, err := globals.setup()
	if err != nil {
		return err
	}

	presets := cfg.Presets()

	ui.PrintHeader("Available presets:")
	table := ui.NewTable(10, 8, 8, 6, 14)
	table.Header("Name", "Layer", "Infill", "Walls", "Pattern")
	for _, name := range presets.Names() {
		p, err := presets.Get(name)
		if err != nil {
			return err
		}
		table.Row(name,
			p.StringOr(settings.KeyLayerHeight, "?")+"mm",
			p.StringOr(settings.KeySparseInfillDensity, "?"),
			p.StringOr(settings.KeyWallLoops, "?"),
			p.StringOr(settings.KeySparseInfillPattern, "?"))
	}
	return nil
}

type SettingsCmd struct{}

func (c *SettingsCmd) Run() error {
	ui.PrintText(renderSettingsReference())
	return nil
}

type InspectCmd struct {
	File              string `arg:"" help:"3MF file to inspect" type:"path"`
	ShowSettings      bool   `help:"Print Metadata/project_settings.config" name:"show-settings"`
	ShowModelSettings bool   `help:"Print Metadata/model_settings.config" name:"show-model-settings"`
}

func (c *InspectCmd) Run(globals *Globals) error {
	if _, err := globals.setup(); err != nil {
		return err
	}

	inspector := inspect.NewInspector()
	return inspector.Inspect(c.File, inspect.Options{
		ShowSettings:      c.ShowSettings,
		ShowModelSettings: c.ShowModelSettings,
	})
}

type ExtractCmd struct {
	File      string `arg:"" help:"3MF file to extract from" type:"path"`
	OutputDir string `help:"Output directory" short:"o" default:"." name:"output-dir" type:"path"`
	Binary    bool   `help:"Write binary STL instead of ASCII"`
}

func (c *ExtractCmd) Run(globals *Globals) error {
	if _, err := globals.setup(); err != nil {
		return err
	}
	defer logger.Sync()

	_, err := extract.NewExtractor().Extract(c.File, c.OutputDir, c.Binary)
	return err
}

type ExportSTLCmd struct {
	Input  string `arg:"" help:"Input STL file" type:"path"`
	Output string `arg:"" help:"Output STL file" type:"path"`
	Binary bool   `help:"Write binary STL instead of ASCII"`
}

func (c *ExportSTLCmd) Run(globals *Globals) error {
	if _, err := globals.setup(); err != nil {
		return err
	}
	defer logger.Sync()

	m, err := stl.NewDecoder().Decode(c.Input)
	if err != nil {
		return err
	}

	w := stl.NewWriter()
	if c.Binary {
		err = w.WriteBinary(m, c.Output)
	} else {
		err = w.WriteASCII(m, buildplan.ObjectName(c.Input), c.Output)
	}
	if err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Wrote %s (%s vertices, %s triangles)",
		c.Output, humanize.Comma(int64(m.VertexCount())), humanize.Comma(int64(m.TriangleCount()))))
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	info := version.Get()
	fmt.Println(info.String())
	return nil
}

// Parse parses command line arguments and executes the appropriate command
func Parse() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("bambu3mf"),
		kong.Description("Convert STL meshes into Bambu Studio 3MF projects with print settings"),
		kong.UsageOnError(),
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
