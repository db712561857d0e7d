package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/alexanderwanyoike/forgecut/internal/config"
	"github.com/alexanderwanyoike/forgecut/internal/editor"
	"github.com/alexanderwanyoike/forgecut/internal/logging"
	"github.com/alexanderwanyoike/forgecut/internal/render"
	"github.com/alexanderwanyoike/forgecut/internal/timeline"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "forgecut",
	Short: "forgecut - timeline video editing and rendering",
	Long:  "A non-linear video editing core: microsecond-accurate timelines compiled to ffmpeg render jobs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(cacheCmd)
}

var newCmd = &cobra.Command{
	Use:   "new [project file]",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		settings, ok := timeline.Preset(cfg.Project.Preset)
		if !ok {
			return fmt.Errorf("unknown preset %q", cfg.Project.Preset)
		}

		name := filepath.Base(args[0])
		project := timeline.NewProject(name, settings)
		project.InitDefaultTracks()

		if err := project.Save(args[0]); err != nil {
			return err
		}

		log.Info().
			Str("project", name).
			Str("preset", cfg.Project.Preset).
			Msg("created project")
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [project file] [media file...]",
	Short: "Import media files into a project",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		runner, err := render.NewRunner(log.Logger, cfg)
		if err != nil {
			return err
		}

		project, err := timeline.LoadProject(args[0])
		if err != nil {
			return err
		}

		for _, path := range args[1:] {
			asset, err := runner.ImportAsset(cmd.Context(), path)
			if err != nil {
				return err
			}
			project.AddAsset(asset)

			log.Info().
				Str("name", asset.Name).
				Str("kind", string(asset.Kind)).
				Str("duration", asset.Probe.Duration.String()).
				Msg("imported")
		}

		return project.Save(args[0])
	},
}

var infoCmd = &cobra.Command{
	Use:   "info [project file]",
	Short: "Show project summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		project, err := timeline.LoadProject(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s  %dx%d @ %g fps\n", project.Name,
			project.Settings.Width, project.Settings.Height, project.Settings.FrameRate)
		fmt.Printf("duration: %s\n", project.Duration())
		fmt.Printf("assets:   %d\n", len(project.Assets))
		for _, tr := range project.Timeline.Tracks {
			fmt.Printf("  [%s] %s: %d items\n", tr.Kind, tr.Name, len(tr.Items))
		}
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [media file]",
	Short: "Probe a media file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		runner, err := render.NewRunner(log.Logger, cfg)
		if err != nil {
			return err
		}

		probe, err := runner.ProbeFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("duration: %s\n", probe.Duration)
		if probe.Width > 0 {
			fmt.Printf("video:    %dx%d @ %g fps (%s)\n", probe.Width, probe.Height, probe.FrameRate, probe.Codec)
		}
		if probe.AudioChannels > 0 {
			fmt.Printf("audio:    %d ch @ %d Hz\n", probe.AudioChannels, probe.SampleRate)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [project file] [output file]",
	Short: "Render a project to a video file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		runner, err := render.NewRunner(log.Logger, cfg)
		if err != nil {
			return err
		}

		project, err := timeline.LoadProject(args[0])
		if err != nil {
			return err
		}

		svc := editor.New(log.Logger, cfg, runner, project)
		job, err := svc.Export(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		start := time.Now()
		for p := range job.Progress.Updates() {
			log.Info().
				Str("percent", fmt.Sprintf("%.1f%%", p.Percent)).
				Int64("frame", p.Frame).
				Str("speed", p.Speed).
				Msg("rendering")
		}

		if err := <-job.Done; err != nil {
			return err
		}

		log.Info().
			Str("output", args[1]).
			Dur("elapsed", time.Since(start)).
			Msg("export complete")
		return nil
	},
}

var (
	thumbWidth      int
	thumbStripWidth int
	thumbInterval   float64
	samplesPerPeak  int
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Generate preview caches for a project's assets",
}

func init() {
	cacheThumbsCmd.Flags().IntVar(&thumbWidth, "width", 160, "thumbnail width in pixels")
	cacheThumbsCmd.Flags().IntVar(&thumbStripWidth, "strip-width", 64, "width of downscaled filmstrip frames")
	cacheThumbsCmd.Flags().Float64Var(&thumbInterval, "interval", 1.0, "seconds between thumbnails")
	cacheWaveformCmd.Flags().IntVar(&samplesPerPeak, "samples-per-peak", 256, "PCM samples folded into each peak")

	cacheCmd.AddCommand(cacheProxyCmd)
	cacheCmd.AddCommand(cacheThumbsCmd)
	cacheCmd.AddCommand(cacheWaveformCmd)
}

var cacheProxyCmd = &cobra.Command{
	Use:   "proxy [project file]",
	Short: "Generate 720p edit proxies for video assets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		runner, err := render.NewRunner(log.Logger, cfg)
		if err != nil {
			return err
		}

		project, err := timeline.LoadProject(args[0])
		if err != nil {
			return err
		}

		proxyDir := filepath.Join(cfg.CacheDir, "proxies")
		for _, asset := range project.Assets {
			if asset.Kind != timeline.AssetVideo {
				continue
			}
			if path, ok := render.ProxyPath(proxyDir, asset.ID.String()); ok {
				log.Debug().Str("name", asset.Name).Str("proxy", path).Msg("proxy up to date")
				continue
			}

			path, err := runner.GenerateProxy(cmd.Context(), asset.Path, proxyDir, asset.ID.String())
			if err != nil {
				return err
			}
			log.Info().Str("name", asset.Name).Str("proxy", path).Msg("generated proxy")
		}
		return nil
	},
}

var cacheThumbsCmd = &cobra.Command{
	Use:   "thumbs [project file]",
	Short: "Extract filmstrip thumbnails for video assets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		runner, err := render.NewRunner(log.Logger, cfg)
		if err != nil {
			return err
		}

		project, err := timeline.LoadProject(args[0])
		if err != nil {
			return err
		}

		thumbDir := filepath.Join(cfg.CacheDir, "thumbnails")
		interval := timeline.FromSeconds(thumbInterval)
		for _, asset := range project.Assets {
			if asset.Kind != timeline.AssetVideo {
				continue
			}

			thumbs, err := runner.ExtractThumbnails(cmd.Context(), asset.Path, thumbDir,
				asset.ID.String(), asset.Probe.Duration, interval, thumbWidth)
			if err != nil {
				return err
			}

			// Zoomed-out timeline strips use smaller copies of the cached frames.
			for _, th := range thumbs {
				stripPath := filepath.Join(filepath.Dir(th.Path), fmt.Sprintf("strip_%d.jpg", int64(th.Time)))
				if _, err := os.Stat(stripPath); err == nil {
					continue
				}
				if err := render.DownscaleThumbnail(th.Path, stripPath, thumbStripWidth); err != nil {
					return err
				}
			}

			log.Info().Str("name", asset.Name).Int("frames", len(thumbs)).Msg("extracted thumbnails")
		}
		return nil
	},
}

var cacheWaveformCmd = &cobra.Command{
	Use:   "waveform [project file]",
	Short: "Compute audio waveform peaks for assets with audio",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		runner, err := render.NewRunner(log.Logger, cfg)
		if err != nil {
			return err
		}

		project, err := timeline.LoadProject(args[0])
		if err != nil {
			return err
		}

		waveDir := filepath.Join(cfg.CacheDir, "waveforms")
		for _, asset := range project.Assets {
			if asset.Probe.AudioChannels == 0 {
				continue
			}

			data, err := runner.ExtractWaveform(cmd.Context(), asset.Path, waveDir, asset.ID.String(), samplesPerPeak)
			if err != nil {
				return err
			}
			log.Info().Str("name", asset.Name).Int("peaks", len(data.Peaks)).Msg("computed waveform")
		}
		return nil
	},
}
