package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"EmotionLens/internal/config"
	"EmotionLens/internal/inference"
	"EmotionLens/pkg/log"

	jsoniter "github.com/json-iterator/go"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type classifyOptions struct {
	Input   string
	Profile string
	Mode    string
	Workers int
	Quiet   bool
}

var classifyOpts classifyOptions

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Run the emotion pipeline over an image or a directory of images",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runClassify(cmd.Context(), classifyOpts, cmd.OutOrStdout())
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyOpts.Input, "input", "i", "", "Image file or directory")
	classifyCmd.Flags().StringVarP(&classifyOpts.Profile, "profile", "p", "", "Pipeline profile: service or demo (default from EMOTION_PROFILE)")
	classifyCmd.Flags().StringVarP(&classifyOpts.Mode, "mode", "m", "", "Selection mode: all_faces or best_face")
	classifyCmd.Flags().IntVarP(&classifyOpts.Workers, "workers", "w", 2, "Number of parallel workers")
	classifyCmd.Flags().BoolVarP(&classifyOpts.Quiet, "quiet", "q", false, "Hide the progress bar")

	classifyCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(classifyCmd)
}

// frameRunner is satisfied by *inference.InferenceContext.
type frameRunner interface {
	RunBytes(ctx context.Context, data []byte) ([]inference.EmotionResult, error)
}

type classifyResult struct {
	Path  string                    `json:"path"`
	Faces []inference.EmotionResult `json:"faces,omitempty"`
	Error string                    `json:"error,omitempty"`
}

func runClassify(ctx context.Context, opts classifyOptions, out io.Writer) error {
	if opts.Workers < 1 {
		return fmt.Errorf("--workers must be at least 1")
	}
	if opts.Profile != "" {
		os.Setenv("EMOTION_PROFILE", opts.Profile)
	}
	if opts.Mode != "" {
		os.Setenv("EMOTION_SELECTION_MODE", opts.Mode)
	}

	paths, err := collectImages(opts.Input)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no images found in %s", opts.Input)
	}

	inferCfg, err := config.LoadInferenceConfig()
	if err != nil {
		return err
	}

	logger := log.NewLogger()
	ic := inference.Load(inferCfg.Pipeline, inferCfg.Load, logger)
	defer ic.Close()
	if !ic.Ready() {
		return fmt.Errorf("pipeline not ready: %w", ic.Err())
	}

	var bar *progressbar.ProgressBar
	if !opts.Quiet {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetDescription("Classifying"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
	}

	failed, err := classify(ctx, ic, paths, opts.Workers, out, bar)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\nClassified %d images, %d failed.\n", len(paths)-failed, failed)
	return nil
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true,
}

// collectImages returns input itself when it is a file, or every image under
// it when it is a directory, sorted by path.
func collectImages(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{input}, nil
	}

	var paths []string
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && imageExts[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)

	return paths, err
}

// classify fans paths out to a fixed worker pool and writes one JSON line per
// image. It returns the number of images that failed.
func classify(ctx context.Context, runner frameRunner, paths []string, workers int, out io.Writer, bar *progressbar.ProgressBar) (int, error) {
	tasks := make(chan string, workers)
	results := make(chan classifyResult, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range tasks {
				results <- classifyOne(ctx, runner, path)
			}
		}()
	}

	go func() {
		defer close(tasks)
		for _, p := range paths {
			select {
			case tasks <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	enc := jsoniter.NewEncoder(out)
	failed := 0
	var writeErr error
	for r := range results {
		if r.Error != "" {
			failed++
		}
		if bar != nil {
			bar.Add(1)
		}
		// Workers still send after a write error; drain them.
		if writeErr != nil {
			continue
		}
		writeErr = enc.Encode(r)
	}
	if writeErr != nil {
		return failed, writeErr
	}

	return failed, ctx.Err()
}

func classifyOne(ctx context.Context, runner frameRunner, path string) classifyResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return classifyResult{Path: path, Error: err.Error()}
	}

	faces, err := runner.RunBytes(ctx, data)
	if err != nil {
		return classifyResult{Path: path, Error: err.Error()}
	}

	return classifyResult{Path: path, Faces: faces}
}
