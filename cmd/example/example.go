package main

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/wabianimation/pcpdeps/src/system/archivist"
	"github.com/wabianimation/pcpdeps/src/system/cerebrum"
	"github.com/wabianimation/pcpdeps/src/system/observer"
	"github.com/wabianimation/pcpdeps/src/system/pcp"
	"github.com/wabianimation/pcpdeps/src/system/scene"
	"github.com/wabianimation/pcpdeps/src/system/sdfpath"
)

//go:embed scene.yaml
var defaultScene []byte

var (
	scenePath  string
	changeArgs []string
	workers    int
	logLevel   string
	debugLevel int

	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	added   = color.GreenString
	dropped = color.RedString

	rootCmd = &cobra.Command{
		Use:   "example",
		Short: "Populate a dependency index from a scene and replay changes against it",
		Long: `example loads a scene (the built-in shot when --scene is not given),
composes every prim index into a dependency index and then applies the
changes given with --change, printing which prim indices get recomposed.

A change is either structural, layerStack:/Site/Path, or a field change,
layerStack:/Site/Path:field=old:new.`,
		SilenceUsage: true,
		RunE:         run,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&scenePath, "scene", "", "scene YAML file, defaults to the built-in shot")
	rootCmd.Flags().StringArrayVar(&changeArgs, "change", nil, "change to apply, may be repeated")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "composition workers, 0 means one per CPU")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warning, error or fatal")
	rootCmd.Flags().IntVar(&debugLevel, "debug-level", archivist.DEBUG_LEVEL_INFO, "debug verbosity when --log-level=debug")
}

func run(cmd *cobra.Command, args []string) error {
	level, err := archivist.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger := archivist.New(&archivist.Config{
		Logger:     log.New(os.Stderr, "", 0),
		LogLevel:   level,
		DebugLevel: debugLevel,
	})

	s, err := loadScene()
	if err != nil {
		return err
	}
	changes, err := parseChanges(s, changeArgs)
	if err != nil {
		return err
	}

	index := pcp.New(logger)
	scheduler := cerebrum.NewScheduler(index, scene.NewComposer(s), cerebrum.NewDemultiplexer(), logger)
	obs := observer.New("pcpdeps-example", logger)

	ctx := cmd.Context()
	if err := scheduler.Populate(ctx, s.PrimIndexPaths(), workers); err != nil {
		return err
	}
	version := obs.Capture(index)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, heading("Used layers"))
	for _, id := range index.UsedLayers().Identifiers() {
		fmt.Fprintln(out, "  "+id)
	}
	fmt.Fprintln(out, heading("Used root layers"))
	for _, id := range index.UsedRootLayers().Identifiers() {
		fmt.Fprintln(out, "  "+id)
	}
	fmt.Fprintf(out, "%s %d\n", heading("Dependencies"), obs.NumDependencies(version))
	index.ForEachDependency(func(ls pcp.LayerStack, site, primIndexPath sdfpath.Path) {
		fmt.Fprintf(out, "  %s:%s <- %s\n", ls.Identifier(), site, primIndexPath)
	})
	if fields := obs.Fields(version); len(fields) > 0 {
		fmt.Fprintf(out, "%s %s\n", heading("Dynamic file format fields"), strings.Join(fields, ", "))
	}

	if len(changes) == 0 {
		return nil
	}
	result, err := scheduler.Invalidate(ctx, changes, workers)
	if err != nil {
		return err
	}
	obs.Capture(index)

	fmt.Fprintln(out, heading("Recomposed"))
	for _, p := range result.Recomposed {
		fmt.Fprintln(out, "  "+added(p.String()))
	}
	for _, ls := range result.Dropped {
		fmt.Fprintln(out, "  "+dropped("dropped layer stack "+ls.Identifier()))
	}
	return nil
}

func loadScene() (*scene.Scene, error) {
	if scenePath == "" {
		return scene.Parse(defaultScene)
	}
	return scene.LoadFile(scenePath)
}
