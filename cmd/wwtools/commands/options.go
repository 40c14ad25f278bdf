package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wwiseaudio/wwtools/internal/wem"
)

var (
	flagCodebooksFile    string
	flagInlineCodebooks  bool
	flagFullSetup        bool
	flagForceModPackets  bool
	flagForceNoModPackets bool
)

// addCodecFlags attaches the codebook/packet-format overrides the original
// ww2ogg CLI exposes to the root (directory conversion), wem, and
// bnk-extract commands.
func addCodecFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagCodebooksFile, "codebooks-file", "", "path to a packed external codebooks blob (required unless --inline-codebooks)")
	cmd.Flags().BoolVar(&flagInlineCodebooks, "inline-codebooks", false, "codebooks are stored inline in the WEM's setup packet")
	cmd.Flags().BoolVar(&flagFullSetup, "full-setup", false, "inline codebooks are already in full canonical Vorbis setup form")
	cmd.Flags().BoolVar(&flagForceModPackets, "force-mod-packets", false, "force modified-packet audio framing regardless of the vorb chunk")
	cmd.Flags().BoolVar(&flagForceNoModPackets, "force-no-mod-packets", false, "force standard Vorbis audio framing regardless of the vorb chunk")
}

// buildWemOptions resolves the codec flags into wem.Options, loading the
// external codebooks file when inline codebooks were not requested.
//
// The packed default codebooks blob ww2ogg ships with its binary (see
// DESIGN.md's "packed codebooks asset" entry) isn't available to embed
// here, so unlike the original CLI this one has no built-in default: a
// codebooks file must be supplied explicitly, or --inline-codebooks used.
func buildWemOptions() (wem.Options, error) {
	opts := wem.Options{
		InlineCodebooks: flagInlineCodebooks,
		FullSetup:       flagFullSetup,
	}

	switch {
	case flagForceModPackets && flagForceNoModPackets:
		return opts, fmt.Errorf("--force-mod-packets and --force-no-mod-packets are mutually exclusive")
	case flagForceModPackets:
		opts.ForcePacketFormat = wem.ForceModPackets
	case flagForceNoModPackets:
		opts.ForcePacketFormat = wem.ForceNoModPackets
	}

	if flagInlineCodebooks {
		return opts, nil
	}
	if flagCodebooksFile == "" {
		return opts, fmt.Errorf("a codebooks file is required: pass --codebooks-file <path> or --inline-codebooks")
	}
	data, err := os.ReadFile(flagCodebooksFile)
	if err != nil {
		return opts, fmt.Errorf("reading codebooks file: %w", err)
	}
	opts.CodebooksData = data
	return opts, nil
}
