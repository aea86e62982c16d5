package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/brepmaster/uvgraph/pkg/stats"
)

var (
	statsInput string
	statsCSV   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Report per-category graph statistics over a built dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := stats.AnalyzeCategories(statsInput)
		if err != nil {
			return err
		}
		rows := stats.Summarize(categories)
		if len(rows) == 0 {
			fmt.Println("no loadable graphs found")
			return nil
		}

		if statsCSV != "" {
			if err := writeCSV(rows, statsCSV); err != nil {
				return err
			}
			fmt.Printf("report written to %s\n", statsCSV)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "category\tmodels\tnode_mean\tnode_std\tnode_min\tnode_max\tedge_mean\tedge_std\tedge_min\tedge_max")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%d\t%d\t%.2f\t%.2f\t%d\t%d\n",
				r.Category, r.ModelCount,
				r.NodeMean, r.NodeStd, r.NodeMin, r.NodeMax,
				r.EdgeMean, r.EdgeStd, r.EdgeMin, r.EdgeMax)
		}
		return w.Flush()
	},
}

func writeCSV(rows []stats.Summary, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"category", "model_count",
		"node_mean", "node_std", "node_min", "node_max",
		"edge_mean", "edge_std", "edge_min", "edge_max",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Category,
			strconv.Itoa(r.ModelCount),
			strconv.FormatFloat(r.NodeMean, 'f', 2, 64),
			strconv.FormatFloat(r.NodeStd, 'f', 2, 64),
			strconv.Itoa(r.NodeMin),
			strconv.Itoa(r.NodeMax),
			strconv.FormatFloat(r.EdgeMean, 'f', 2, 64),
			strconv.FormatFloat(r.EdgeStd, 'f', 2, 64),
			strconv.Itoa(r.EdgeMin),
			strconv.Itoa(r.EdgeMax),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

var largestInput string

var largestCmd = &cobra.Command{
	Use:   "largest",
	Short: "Find the graphs with the most nodes and edges in a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		nodeFile, maxNodes, edgeFile, maxEdges, err := stats.MaxNodesEdges(largestInput)
		if err != nil {
			return err
		}
		if nodeFile == "" {
			fmt.Println("no loadable graphs found")
			return nil
		}
		fmt.Printf("most nodes: %d in %s\n", maxNodes, nodeFile)
		fmt.Printf("most edges: %d in %s\n", maxEdges, edgeFile)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsInput, "input", "", "root directory of category folders with graph files")
	statsCmd.Flags().StringVar(&statsCSV, "csv", "", "also write the report as CSV to this path")
	statsCmd.MarkFlagRequired("input")

	largestCmd.Flags().StringVar(&largestInput, "input", "", "directory of graph files")
	largestCmd.MarkFlagRequired("input")
}
