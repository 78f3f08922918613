// unplug is a toolkit for inspecting the game's global data files.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/yoremi/unplug-go/pkg/globals"
)

var rootCmd = &cobra.Command{
	Use:   "unplug",
	Short: "Inspect game data files",
}

var globalsCmd = &cobra.Command{
	Use:   "globals",
	Short: "Inspect a globals file",
}

var globalsInfoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Show the partition layout of a globals file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		header, err := globals.ReadHeader(f)
		if err != nil {
			return err
		}
		fmt.Printf("metadata:  offset=%#x size=%#x\n", header.MetadataOffset, header.MetadataSize)
		fmt.Printf("collision: offset=%#x size=%#x\n", header.CollisionOffset, header.CollisionSize)
		fmt.Printf("libs:      offset=%#x size=%#x\n", header.LibsOffset, header.LibsSize)
		return nil
	},
}

var globalsLibsCmd = &cobra.Command{
	Use:   "libs <file>",
	Short: "List the library entry points in a globals file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		header, err := globals.ReadHeader(f)
		if err != nil {
			return err
		}
		libsOffset, _ := header.Libs()
		if _, err := f.Seek(int64(libsOffset), 0); err != nil {
			return err
		}
		table, err := globals.ReadLibTable(f)
		if err != nil {
			return err
		}
		glog.V(1).Infof("Read %d library entry points", len(table.EntryPoints))
		for i, offset := range table.EntryPoints {
			fmt.Printf("lib[%d] = %#x\n", i, offset)
		}
		return nil
	},
}

func init() {
	globalsCmd.AddCommand(globalsInfoCmd)
	globalsCmd.AddCommand(globalsLibsCmd)
	rootCmd.AddCommand(globalsCmd)
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
}

func main() {
	defer glog.Flush()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
