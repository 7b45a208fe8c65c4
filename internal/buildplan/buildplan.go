// Package buildplan runs the STL to 3MF conversion as a sequence of steps.
package buildplan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/philipparndt/bambu3mf/internal/geometry"
	"github.com/philipparndt/bambu3mf/internal/logger"
	"github.com/philipparndt/bambu3mf/internal/mesh"
	"github.com/philipparndt/bambu3mf/internal/settings"
	"github.com/philipparndt/bambu3mf/internal/stl"
	"github.com/philipparndt/bambu3mf/internal/threemf"
	"github.com/philipparndt/bambu3mf/internal/ui"
)

// Options describe a single conversion
type Options struct {
	InputFile  string
	OutputFile string

	// ObjectName defaults to the input file name without extension
	ObjectName string

	// BaseTemplate is a settings JSON file; empty selects the built-in one
	BaseTemplate string
	Preset       string
	Presets      settings.Presets
	Overrides    []string
}

// BuildStep represents a single step in the build plan
type BuildStep interface {
	Name() string
	Execute(ctx *Context) error
}

// Context holds the data passed between the steps of one plan
type Context struct {
	Options   Options
	Settings  settings.Settings
	Mesh      *mesh.IndexedMesh
	Box       geometry.BoundingBox
	Placement geometry.Placement
	Summary   *threemf.PackageSummary
	Warnings  []string

	// KeyOrder is the order settings keys are written in
	KeyOrder []string
}

// warn records warnings for the caller to report
func (c *Context) warn(warnings ...string) {
	for _, w := range warnings {
		logger.Log.Debug("warning", zap.String("message", w))
	}
	c.Warnings = append(c.Warnings, warnings...)
}

// BuildPlan contains all steps needed to convert one file
type BuildPlan struct {
	Steps      []BuildStep
	OutputFile string

	ctx *Context
}

// Result is what a successful plan produced
type Result struct {
	Settings  settings.Settings
	Mesh      *mesh.IndexedMesh
	Box       geometry.BoundingBox
	Placement geometry.Placement
	Summary   *threemf.PackageSummary
	Warnings  []string
}

// Planner creates build plans
type Planner struct{}

// NewPlanner creates a new build planner
func NewPlanner() *Planner {
	return &Planner{}
}

// CreatePlan checks the options and creates an execution plan
func (p *Planner) CreatePlan(opts Options) (*BuildPlan, error) {
	if opts.InputFile == "" {
		return nil, fmt.Errorf("input file must be specified")
	}
	if opts.OutputFile == "" {
		return nil, fmt.Errorf("output file must be specified")
	}
	if ext := strings.ToLower(filepath.Ext(opts.OutputFile)); ext != ".3mf" {
		logger.Log.Warn("output file does not end in .3mf", zap.String("output", opts.OutputFile))
	}

	if opts.ObjectName == "" {
		opts.ObjectName = ObjectName(opts.InputFile)
	}
	if opts.Preset == "" {
		opts.Preset = settings.DefaultPreset
	}
	if opts.Presets == nil {
		opts.Presets = settings.BuiltinPresets()
	}

	plan := &BuildPlan{
		OutputFile: opts.OutputFile,
		ctx:        &Context{Options: opts},
	}

	plan.Steps = append(plan.Steps,
		&ValidateInputStep{},
		&LoadSettingsStep{},
		&DecodeMeshStep{},
		&ComputePlacementStep{},
		&ValidateSettingsStep{},
		&EmitPackageStep{},
	)

	return plan, nil
}

// ObjectName derives the object name from an input path
func ObjectName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Execute runs all steps in the plan
func (p *BuildPlan) Execute() (*Result, error) {
	if ui.IsVerbose() {
		ui.PrintInfo(fmt.Sprintf("Total steps: %d", len(p.Steps)))
	}

	for i, step := range p.Steps {
		if ui.IsVerbose() {
			ui.PrintStep(fmt.Sprintf("Step %d/%d: %s", i+1, len(p.Steps), step.Name()))
		}
		logger.Log.Debug("executing step", zap.Int("step", i+1), zap.String("name", step.Name()))

		if err := step.Execute(p.ctx); err != nil {
			return nil, err
		}
	}

	return &Result{
		Settings:  p.ctx.Settings,
		Mesh:      p.ctx.Mesh,
		Box:       p.ctx.Box,
		Placement: p.ctx.Placement,
		Summary:   p.ctx.Summary,
		Warnings:  p.ctx.Warnings,
	}, nil
}

// ValidateInputStep fails early when the STL file does not exist
type ValidateInputStep struct{}

func (s *ValidateInputStep) Name() string {
	return "Validate input"
}

func (s *ValidateInputStep) Execute(ctx *Context) error {
	info, err := os.Stat(ctx.Options.InputFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &stl.InputNotFoundError{Path: ctx.Options.InputFile, Err: err}
		}
		return fmt.Errorf("error checking input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input %s is a directory", ctx.Options.InputFile)
	}
	return nil
}

// LoadSettingsStep merges base template, preset and overrides
type LoadSettingsStep struct{}

func (s *LoadSettingsStep) Name() string {
	return "Load settings"
}

func (s *LoadSettingsStep) Execute(ctx *Context) error {
	base, warnings, err := settings.LoadBase(ctx.Options.BaseTemplate)
	if err != nil {
		return err
	}
	ctx.warn(warnings...)

	preset, err := ctx.Options.Presets.Get(ctx.Options.Preset)
	if err != nil {
		return err
	}

	merged, warnings := settings.Merge(base.Settings, preset, ctx.Options.Overrides)
	ctx.warn(warnings...)
	ctx.Settings = merged
	ctx.KeyOrder = settings.KeyOrder(base.Keys, preset, ctx.Options.Overrides)

	logger.Log.Debug("settings merged",
		zap.String("preset", ctx.Options.Preset),
		zap.Int("overrides", len(ctx.Options.Overrides)),
		zap.Int("keys", len(merged)))
	return nil
}

// DecodeMeshStep reads the STL file into an indexed mesh
type DecodeMeshStep struct{}

func (s *DecodeMeshStep) Name() string {
	return "Decode mesh"
}

func (s *DecodeMeshStep) Execute(ctx *Context) error {
	m, err := stl.NewDecoder().Decode(ctx.Options.InputFile)
	if err != nil {
		return err
	}
	ctx.Mesh = m

	logger.Log.Debug("mesh decoded",
		zap.String("input", ctx.Options.InputFile),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("triangles", m.TriangleCount()))
	return nil
}

// ComputePlacementStep computes the bounding box and the bed centre placement
type ComputePlacementStep struct{}

func (s *ComputePlacementStep) Name() string {
	return "Compute placement"
}

func (s *ComputePlacementStep) Execute(ctx *Context) error {
	box, err := geometry.ComputeBox(ctx.Mesh)
	if err != nil {
		return err
	}
	ctx.Box = box

	area, err := ctx.Settings.Strings(settings.KeyPrintableArea)
	if err != nil {
		return fmt.Errorf("invalid printable area: %w", err)
	}
	x, y, err := geometry.BedCenter(area)
	if err != nil {
		return fmt.Errorf("invalid printable area: %w", err)
	}
	ctx.Placement = geometry.NewPlacement(x, y)

	logger.Log.Debug("placement computed",
		zap.Float64("bed_center_x", x),
		zap.Float64("bed_center_y", y),
		zap.String("transform", ctx.Placement.String()))
	return nil
}

// ValidateSettingsStep fixes setting conflicts right before emission
type ValidateSettingsStep struct{}

func (s *ValidateSettingsStep) Name() string {
	return "Validate settings"
}

func (s *ValidateSettingsStep) Execute(ctx *Context) error {
	validated, warnings := settings.Validate(ctx.Settings)
	ctx.warn(warnings...)
	ctx.Settings = validated
	return nil
}

// EmitPackageStep writes the 3MF package
type EmitPackageStep struct{}

func (s *EmitPackageStep) Name() string {
	return "Write 3MF"
}

func (s *EmitPackageStep) Execute(ctx *Context) error {
	summary, err := threemf.NewEmitter().WithKeyOrder(ctx.KeyOrder).Emit(ctx.Mesh, ctx.Placement, ctx.Settings, ctx.Options.ObjectName, ctx.Options.OutputFile)
	if err != nil {
		return err
	}
	ctx.Summary = summary
	return nil
}
