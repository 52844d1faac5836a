package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/keagan/framebridge/internal/batch"
	"github.com/keagan/framebridge/internal/bridge"
	"github.com/keagan/framebridge/internal/config"
	"github.com/keagan/framebridge/internal/ffmpeg"
	"github.com/keagan/framebridge/internal/frames"
	"github.com/keagan/framebridge/internal/logging"
	"github.com/keagan/framebridge/pkg/util"
)

var (
	cfgFile string
	verbose bool

	logger zerolog.Logger
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "framebridge",
	Short: "framebridge - seamless video splicing at similar frames",
	Long: "Finds the most visually similar frames between two videos and splices\n" +
		"them together at that point, producing transitions without hard cuts.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(configCmd)
}

// newBridger assembles the full pipeline from config. An empty strategy
// override keeps the configured one.
func newBridger(cfg *config.Config, strategyOverride string) (*bridge.Bridger, error) {
	exec, err := ffmpeg.New(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, err
	}

	searchCfg := cfg.Search
	if strategyOverride != "" {
		searchCfg.Strategy = strategyOverride
	}

	sampler := frames.NewSampler(logger, exec)
	scorer := frames.NewScorer()
	strategy := bridge.NewStrategy(logger, sampler, scorer, searchCfg)

	return bridge.New(logger, exec, strategy), nil
}

var (
	bridgeOutput   string
	bridgeStrategy string
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge [video A] [video B]",
	Short: "Splice two videos at their most similar frames",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		output := bridgeOutput
		if output == "" {
			if err := util.EnsureDir(cfg.OutputDir); err != nil {
				return err
			}
			output = filepath.Join(cfg.OutputDir,
				fmt.Sprintf("bridged_%s_%s.mp4", util.BaseNoExt(args[0]), util.BaseNoExt(args[1])))
		}

		bridger, err := newBridger(cfg, bridgeStrategy)
		if err != nil {
			return err
		}

		result, err := bridger.Bridge(cmd.Context(), args[0], args[1], output)
		if err != nil {
			return err
		}

		fmt.Println(result.Text)
		if result.FrameAPath != "" {
			fmt.Printf("Connection frames: %s, %s\n", result.FrameAPath, result.FrameBPath)
		}
		if result.Score < cfg.Search.SimilarityThreshold {
			logger.Warn().
				Float64("score", result.Score).
				Float64("threshold", cfg.Search.SimilarityThreshold).
				Msg("similarity below threshold, transition may be visible")
		}
		return nil
	},
}

var (
	batchMode   string
	batchOutput string
	batchReport string
)

var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Merge every video in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		bridger, err := newBridger(cfg, "")
		if err != nil {
			return err
		}

		orch := batch.NewOrchestrator(logger, bridger, cfg.OutputDir, cfg.SupportedFormats)

		var bar *progressbar.ProgressBar
		orch.ProgressFunc = func(done, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total), "merging")
			}
			_ = bar.Set(done)
		}

		videos, err := orch.Discover(args[0])
		if err != nil {
			return err
		}

		var steps []batch.StepResult
		var success bool

		switch batchMode {
		case "sequential":
			outcome, err := orch.SequentialMerge(cmd.Context(), videos, batchOutput)
			if err != nil {
				return err
			}
			steps, success = outcome.Steps, outcome.Success
			if success {
				fmt.Printf("Merged %d videos -> %s\n", len(videos), outcome.OutputPath)
			}
		case "pairwise":
			outcome, err := orch.PairwiseMerge(cmd.Context(), videos)
			if err != nil {
				return err
			}
			steps, success = outcome.Steps, outcome.Success
			if success {
				fmt.Printf("Produced %d outputs in %s\n", len(outcome.OutputPaths), cfg.OutputDir)
			}
		default:
			return fmt.Errorf("unknown mode %q (want sequential or pairwise)", batchMode)
		}

		if batchReport != "" {
			text, err := batch.NewReporter(logger).Write(steps, batchReport)
			if err != nil {
				return err
			}
			fmt.Print(text)
		}

		if !success {
			return fmt.Errorf("batch run produced no output")
		}
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [video]",
	Short: "Show video metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		exec, err := ffmpeg.New(logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.ProbePath, cfg.FFmpeg.Threads)
		if err != nil {
			return err
		}

		info, err := exec.Probe(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		stat, err := os.Stat(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("File:        %s\n", filepath.Base(info.FilePath))
		fmt.Printf("Size:        %.2f MB\n", float64(stat.Size())/(1024*1024))
		fmt.Printf("Duration:    %s\n", info.Duration)
		fmt.Printf("Resolution:  %dx%d\n", info.Width, info.Height)
		fmt.Printf("FPS:         %.3f\n", info.FPS)
		fmt.Printf("Frames:      %d\n", info.FrameCount)
		fmt.Printf("Video codec: %s\n", info.VideoCodec)
		if info.HasAudio {
			fmt.Printf("Audio codec: %s\n", info.AudioCodec)
		} else {
			fmt.Println("Audio:       none")
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Config management commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Print(string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.yaml in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if util.FileExists(path) {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.Default().Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	bridgeCmd.Flags().StringVarP(&bridgeOutput, "output", "o", "", "output file (default: <output_dir>/bridged_<A>_<B>.mp4)")
	bridgeCmd.Flags().StringVar(&bridgeStrategy, "strategy", "", "connection strategy: search or fixed")

	batchCmd.Flags().StringVar(&batchMode, "mode", "sequential", "merge mode: sequential or pairwise")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "merged_sequence.mp4", "output name for sequential mode")
	batchCmd.Flags().StringVar(&batchReport, "report", "", "write a batch report to this path")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
