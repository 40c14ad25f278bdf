package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wwiseaudio/wwtools/internal/batch"
	"github.com/wwiseaudio/wwtools/internal/output"
	"github.com/wwiseaudio/wwtools"
)

var flagWemInfo bool

var wemCmd = &cobra.Command{
	Use:   "wem <input.wem>",
	Short: "Convert a single WEM to OGG, or report its metadata with --info",
	Args:  cobra.ExactArgs(1),
	RunE:  runWem,
}

func init() {
	wemCmd.Flags().BoolVar(&flagWemInfo, "info", false, "print WEM metadata instead of converting")
	addCodecFlags(wemCmd)
}

func runWem(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	opts, err := buildWemOptions()
	if err != nil {
		return err
	}

	if flagWemInfo {
		info, err := wwtools.WemInfo(data, opts)
		if err != nil {
			return fmt.Errorf("reading WEM info: %w", err)
		}
		fmt.Print(info)
		return nil
	}

	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".ogg"
	output.Progressf("Extracting %s...\n", outPath)

	out, err := wwtools.WemToOgg(data, opts)
	if err != nil {
		output.Errorf("Failed to convert %s: %v\n", path, err)
		return err
	}
	return os.WriteFile(outPath, out, 0o644)
}

func runConvertDirectory(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	dirEntries, err := os.ReadDir(cwd)
	if err != nil {
		return err
	}

	opts, err := buildWemOptions()
	if err != nil {
		return err
	}

	var paths []string
	for _, e := range dirEntries {
		if e.IsDir() || strings.ToLower(filepath.Ext(e.Name())) != ".wem" {
			continue
		}
		paths = append(paths, e.Name())
	}
	if len(paths) == 0 {
		return fmt.Errorf("no WEM files found in the current directory")
	}

	jobs := make([]batch.Job, 0, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			output.Errorf("Failed to read %s: %v\n", path, err)
			continue
		}
		jobs = append(jobs, batch.Job{
			Data:    data,
			OutPath: strings.TrimSuffix(path, filepath.Ext(path)) + ".ogg",
			Index:   i,
			Total:   len(paths),
		})
	}

	writeFile := func(path string, data []byte) error { return os.WriteFile(path, data, 0o644) }
	for _, r := range batch.Convert(jobs, opts, writeFile) {
		if r.Err != nil {
			output.Errorf("Failed to convert %s: %v\n", r.Job.OutPath, r.Err)
		}
	}
	return nil
}
