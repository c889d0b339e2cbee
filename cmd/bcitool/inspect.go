package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wjy123009/gatk/internal/bci"
)

func newInspectCmd() *cobra.Command {
	var showEntries bool

	cmd := &cobra.Command{
		Use:   "inspect <file.bci>",
		Short: "Print a stream's header, dictionary, and index summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0], showEntries)
		},
	}

	cmd.Flags().BoolVar(&showEntries, "entries", false, "List every index entry")

	return cmd
}

func runInspect(path string, showEntries bool) error {
	info, err := bci.Inspect(path)
	if err != nil {
		return err
	}

	fmt.Printf("file:         %s\n", info.Path)
	fmt.Printf("class:        %s\n", info.Class)
	fmt.Printf("version:      %s\n", info.Version)
	fmt.Printf("data offset:  %v\n", info.DataOffset)
	fmt.Printf("index offset: %v\n", info.IndexOffset)
	fmt.Printf("index entries: %d\n", len(info.Entries))
	fmt.Printf("contigs:      %d\n", info.Dict.Len())
	for _, c := range info.Dict.Contigs() {
		fmt.Printf("  %s\t%d\n", c.Name, c.Length)
	}

	if showEntries {
		fmt.Println("entries:")
		for _, e := range info.Entries {
			fmt.Printf("  %s:%d-%d\t%v\n",
				e.Interval.Name(info.Dict), e.Interval.Start, e.Interval.End, e.Position)
		}
	}
	return nil
}
