package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-dpiva/pkg/declaration"
)

// inspect FILE: print the header of a declaration and its encoded size.
func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE|BUNDLE.zip",
		Short: "Show the header of declaration files without submitting them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var decls []*declaration.Declaration
			if strings.EqualFold(filepath.Ext(args[0]), ".zip") {
				bundle, err := declaration.LoadBundle(args[0])
				if err != nil {
					return err
				}
				decls = bundle
			} else {
				d, err := declaration.Load(args[0])
				if err != nil {
					return err
				}
				decls = append(decls, d)
			}

			out := cmd.OutOrStdout()
			for _, d := range decls {
				if d.Err != nil {
					fmt.Fprintf(out, "%s\terror: %v\n", d.Name, d.Err)
					continue
				}
				encoded, err := declaration.Encode(d.Data)
				if err != nil {
					fmt.Fprintf(out, "%s\terror: %v\n", d.Name, err)
					continue
				}
				fmt.Fprintf(out, "%s\tNIF %s\tyear %s\tperiod %s\t%d bytes (%d encoded)\n",
					d.Name, d.Info.NIF, d.Info.Year, d.Info.Period, len(d.Data), len(encoded))
			}
			return nil
		},
	}
}
