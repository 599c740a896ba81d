package main

import (
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/scrollsite/internal/config"
	"github.com/ivlev/scrollsite/internal/director"
	"github.com/ivlev/scrollsite/internal/engine"
)

var (
	simParams  config.SimulationParams
	simAll     bool
	simWorkers int
	simFile    string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [page...]",
	Short: "Play scenes headlessly and print their frames",
	Long: `Scrolls each page from top to bottom with evenly spaced wheel input and
prints the final CSS of every target. With --frames every style write is
printed as it happens.

Without arguments the newest scene file is played.`,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.Float64Var(&simParams.Width, "width", 0, "Viewport width (0 uses the scene's)")
	f.Float64Var(&simParams.Height, "height", 0, "Viewport height (0 uses the scene's)")
	f.IntVar(&simParams.FPS, "fps", 60, "Frames per second")
	f.Float64Var(&simParams.Duration, "duration", 4, "Seconds of scrolling")
	f.Float64Var(&simParams.Distance, "distance", 0, "Pixels scrolled (0 scrolls to the end)")
	f.BoolVar(&simParams.Verbose, "frames", false, "Print every style write")
	f.BoolVar(&simAll, "all", false, "Play every scene in the scenes directory")
	f.IntVar(&simWorkers, "workers", runtime.NumCPU(), "Scenes played in parallel with --all")
	f.StringVarP(&simFile, "file", "f", "", "Play this scene file instead of the scenes directory")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	log := logger.Named("simulate")

	var scenes []*director.Scene
	switch {
	case simFile != "":
		sc, err := director.ReadScene(simFile)
		if err != nil {
			return err
		}
		scenes = append(scenes, sc)

	case simAll || len(args) > 0:
		d := director.NewDirector(cfg.Scenes.Dir, log)
		if err := d.LoadAll(); err != nil {
			log.Warn(err.Error())
		}
		pages := args
		if simAll {
			pages = d.Pages()
		}
		for _, name := range pages {
			sc, ok := d.Scene(name)
			if !ok {
				return fmt.Errorf("no scene for page %q in %s", name, cfg.Scenes.Dir)
			}
			scenes = append(scenes, sc)
		}

	default:
		path, err := director.FindLatestScene(cfg.Scenes.Dir)
		if err != nil {
			return fmt.Errorf("[-] %v. Put a scene into %s/", err, cfg.Scenes.Dir)
		}
		fmt.Fprintf(out, "[*] Selected scene: %s\n", path)
		sc, err := director.ReadScene(path)
		if err != nil {
			return err
		}
		scenes = append(scenes, sc)
	}

	if len(scenes) == 0 {
		return fmt.Errorf("no scenes to play")
	}

	pages := make([]*director.Page, 0, len(scenes))
	for _, sc := range scenes {
		page, err := director.Compile(sc, nil)
		if err != nil {
			return fmt.Errorf("compile %s: %w", sc.Page, err)
		}
		pages = append(pages, page)
	}

	if len(pages) == 1 {
		r, err := engine.Simulate(ctx, pages[0], simParams, cfg.Scroll, out, log)
		if err != nil {
			return err
		}
		printReport(cmd, r)
		return nil
	}

	reports, err := engine.SimulateAll(ctx, pages, simParams, cfg.Scroll, simWorkers, out, log)
	if err != nil {
		return err
	}
	for _, r := range reports {
		printReport(cmd, r)
	}
	return nil
}

func printReport(cmd *cobra.Command, r *engine.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s (%d frames, %s)\n", r.Page, r.Frames, r.Elapsed.Round(time.Millisecond))
	for _, target := range sortedTargets(r.Final) {
		fmt.Fprintf(out, "  %-16s %s\n", target, r.Final[target])
	}
	if len(r.Themes) > 0 {
		fmt.Fprintf(out, "  themes: %v\n", r.Themes)
	}
}

func sortedTargets(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
