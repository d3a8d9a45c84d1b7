// Package cli implements adac's command-line surface: a package-level
// rootCmd built up by each subcommand file's init(), a persistent
// --verbose flag gating logrus's level, and an Execute() entry point
// called once from main.
//
// Parsing Ada source text and driving a full compile belong to the
// embedding driver; what lives here is the surface that operates purely on
// already-produced artifacts (ALI files) and therefore has no dependency
// on a parser.
package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled in when building with a release tag; left empty for a
// plain "go build" or "go run".
var Version string

var rootCmd = &cobra.Command{
	Use:   "adac",
	Short: "Tools for inspecting and ordering Ada library information files.",
	Long: `adac is the driver surface for the Ada-to-LLVM compiler core: it inspects
and orders the .ali library-information files the compiler core's own
unit tests and embedders produce, without itself parsing Ada source.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("adac ")

			if Version != "" {
				fmt.Print(Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Print(info.Main.Version)
			} else {
				fmt.Print("(unknown version)")
			}

			fmt.Println()

			return
		}

		cmd.Help() //nolint:errcheck
	},
}

// Execute runs the root command, whose subcommands this package's init
// functions have already added.
// Called once from cmd/adac's main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
}
