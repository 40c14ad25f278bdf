package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wwiseaudio/wwtools/internal/batch"
	"github.com/wwiseaudio/wwtools/internal/output"
	"github.com/wwiseaudio/wwtools/internal/wem"
	"github.com/wwiseaudio/wwtools/internal/wwerr"
	"github.com/wwiseaudio/wwtools"
)

var (
	flagBnkInfo      bool
	flagBnkNoConvert bool
)

var bnkCmd = &cobra.Command{
	Use:   "bnk",
	Short: "Inspect, extract, or report on Wwise BNK soundbanks",
}

var bnkEventCmd = &cobra.Command{
	Use:   "event <input.bnk> [event-id]",
	Short: "Report which events play which audio files",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runBnkEvent,
}

var bnkExtractCmd = &cobra.Command{
	Use:   "extract <input.bnk>",
	Short: "Extract every WEM referenced by a BNK, converting to OGG unless --no-convert",
	Args:  cobra.ExactArgs(1),
	RunE:  runBnkExtract,
}

func init() {
	bnkCmd.PersistentFlags().BoolVar(&flagBnkInfo, "info", false, "print BNK header/data-index summary instead of the requested operation")
	bnkExtractCmd.Flags().BoolVar(&flagBnkNoConvert, "no-convert", false, "write extracted WEMs as-is instead of converting to OGG")
	addCodecFlags(bnkExtractCmd)

	bnkCmd.AddCommand(bnkEventCmd)
	bnkCmd.AddCommand(bnkExtractCmd)
}

func readBnkInfoOrRun(path string, run func(data []byte) error) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if flagBnkInfo {
		info, err := wwtools.BnkInfo(data)
		if err != nil {
			return fmt.Errorf("reading BNK info: %w", err)
		}
		fmt.Print(info)
		return nil
	}
	return run(data)
}

func runBnkEvent(cmd *cobra.Command, args []string) error {
	path := args[0]
	eventID := ""
	if len(args) > 1 {
		eventID = args[1]
		if _, err := strconv.ParseUint(eventID, 10, 32); err != nil {
			return fmt.Errorf("event id %q is not a valid decimal id", eventID)
		}
	}
	return readBnkInfoOrRun(path, func(data []byte) error {
		report, err := wwtools.BnkEventReport(data, eventID)
		if err != nil {
			return fmt.Errorf("building event report: %w", err)
		}
		fmt.Print(report)
		return nil
	})
}

func runBnkExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	return readBnkInfoOrRun(path, func(data []byte) error {
		entries, err := wwtools.BnkExtract(data)
		if err != nil {
			return fmt.Errorf("extracting BNK: %w", err)
		}

		outDir := strings.TrimSuffix(path, filepath.Ext(path))
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", outDir, err)
		}

		var opts wem.Options
		if !flagBnkNoConvert {
			built, err := buildWemOptions()
			if err != nil {
				return err
			}
			opts = built
		}

		writeFile := func(path string, data []byte) error { return os.WriteFile(path, data, 0o644) }
		var jobs []batch.Job
		bnkDir := filepath.Dir(path)

		for i, e := range entries {
			if e.Streamed {
				// Streamed WEMs live outside the BNK; the full audio is a
				// sibling <id>.wem file the caller must supply, per
				// spec.md §4.5's streamed-entry contract.
				extData, err := os.ReadFile(filepath.Join(bnkDir, fmt.Sprintf("%d.wem", e.ID)))
				if err != nil {
					output.Errorf("%v\n", &wwerr.StreamedWemMissing{ID: e.ID})
					continue
				}
				e.Data = extData
			}
			ext := ".ogg"
			if flagBnkNoConvert {
				ext = ".wem"
			}
			outPath := filepath.Join(outDir, fmt.Sprintf("%d%s", e.ID, ext))

			if flagBnkNoConvert {
				output.Progressf("[%d/%d] Extracting %s...\n", i+1, len(entries), outPath)
				if err := writeFile(outPath, e.Data); err != nil {
					output.Errorf("Failed to write %s: %v\n", outPath, err)
				}
				continue
			}
			jobs = append(jobs, batch.Job{ID: e.ID, Data: e.Data, OutPath: outPath, Index: i, Total: len(entries)})
		}

		for _, r := range batch.Convert(jobs, opts, writeFile) {
			if r.Err != nil {
				output.Errorf("Failed to convert %s: %v\n", r.Job.OutPath, r.Err)
			}
		}
		return nil
	})
}
