package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adalore/adac/pkg/ada/elaborate"
	"github.com/adalore/adac/pkg/ali"
	"github.com/adalore/adac/pkg/util/adapath"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var aliCmd = &cobra.Command{
	Use:   "ali",
	Short: "Inspect and order .ali library-information files.",
}

var aliDumpCmd = &cobra.Command{
	Use:   "dump file.ali",
	Short: "Pretty-print one ALI file's withs, exports, and pragma attributes.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f := readALI(args[0])

		fmt.Printf("checksum: %08x\n", f.Checksum)
		fmt.Println(wrapList("withs", withNames(f.Withs)))
		fmt.Println(wrapList("exports", exportNames(f.Exports)))
		fmt.Printf("preelaborate: %t, pure: %t\n", f.Attrs.Preelaborate, f.Attrs.Pure)
		fmt.Println(wrapList("elaborate", f.Attrs.Elaborate))
		fmt.Println(wrapList("elaborate_all", f.Attrs.ElaborateAll))
	},
}

var aliOrderCmd = &cobra.Command{
	Use:   "order dir",
	Short: "Build the elaboration graph from every .ali file in dir and print a legal order.",
	Long: `Scans dir for .ali files, treats each as one compilation unit (its name taken
from the file's basename, reversing the dot-to-hyphen convention), builds the
elaboration dependency graph from their with-lists and pragma attributes, and
prints a legal elaboration order — or the offending cycle if none exists.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		order := buildAndOrder(args[0])

		for i, v := range order {
			fmt.Printf("%3d. %s (%s)\n", i+1, v.Unit.String(), v.Part)
		}
	},
}

// readALI loads and decodes one ALI file, exiting fatally on any I/O or
// format error.
func readALI(path string) *ali.File {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	if !ali.IsALIFile(data) {
		fmt.Printf("%s: not an adac ALI file\n", path)
		os.Exit(1)
	}

	var f ali.File
	if err := f.UnmarshalBinary(data); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	log.Debugf("loaded %s: %d with-clause(s), %d export(s)", path, len(f.Withs), len(f.Exports))

	return &f
}

func withNames(ws []ali.WithDependency) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Name
	}

	return out
}

func exportNames(es []ali.ExportedSymbol) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = fmt.Sprintf("%s(%s)", e.MangledName, e.Kind)
	}

	return out
}

// unitNameFromALIPath recovers a dotted unit name from an ALI file's
// basename, reversing the dot-to-hyphen/lowercase file-naming convention
// as best effort (casing is not recoverable from the filename alone, so
// each segment is title-cased for display).
func unitNameFromALIPath(path string) adapath.Path {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	segs := strings.Split(base, "-")

	for i, s := range segs {
		if s == "" {
			continue
		}

		segs[i] = strings.ToUpper(s[:1]) + s[1:]
	}

	return adapath.NewAbsolutePath(segs...)
}

// buildAndOrder loads every *.ali file in dir, builds the elaboration
// graph, and returns a legal order, exiting fatally on a read error or a
// cyclic-dependency error (the cycle is printed in full).
func buildAndOrder(dir string) []elaborate.Vertex {
	matches, err := filepath.Glob(filepath.Join(dir, "*.ali"))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	sort.Strings(matches)

	g := elaborate.New()
	specs := make(map[string]elaborate.VertexID)
	files := make(map[string]*ali.File)

	for _, path := range matches {
		unit := unitNameFromALIPath(path)
		f := readALI(path)
		files[unit.String()] = f

		spec := g.AddUnit(unit, elaborate.Spec, f.Attrs.Preelaborate, f.Attrs.Pure)
		body := g.AddUnit(unit, elaborate.Body, f.Attrs.Preelaborate, f.Attrs.Pure)
		g.AddEdge(spec, body, elaborate.SpecBeforeBody)

		specs[unit.String()] = spec
	}

	for unitName, f := range files {
		thisSpec := specs[unitName]

		for _, w := range f.Withs {
			withedSpec, ok := specs[w.Name]
			if !ok {
				// Withed unit not present in dir; nothing further can be
				// inferred about it, so it is simply not represented in
				// the graph — only the units known here get ordered.
				log.Debugf("with-dependency %q not found among loaded ALI files", w.Name)
				continue
			}

			g.AddEdge(withedSpec, thisSpec, elaborate.With)
		}

		for _, name := range f.Attrs.Elaborate {
			withedBody := g.AddUnit(unitNameFromALIPath(name+".ali"), elaborate.Body, false, false)
			g.AddEdge(withedBody, thisSpec, elaborate.Elaborate)
		}

		if len(f.Attrs.ElaborateAll) > 0 {
			g.AddElaborateAll(thisSpec)
		}
	}

	order, err := g.Order()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	return order
}

func init() {
	aliCmd.AddCommand(aliDumpCmd)
	aliCmd.AddCommand(aliOrderCmd)
	rootCmd.AddCommand(aliCmd)
}
