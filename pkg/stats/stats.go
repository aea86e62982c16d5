// Package stats computes descriptive statistics over trees of built graph
// files organized by category folder.
package stats

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/brepmaster/uvgraph/pkg/solid"
	"github.com/brepmaster/uvgraph/pkg/uvgraph"
)

// CategoryStats collects the per-graph node and edge counts of one
// category. It is recomputed on each analysis run and never persisted.
type CategoryStats struct {
	ModelCount int
	Nodes      []int
	Edges      []int
}

// Summary is one row of the category report.
type Summary struct {
	Category   string
	ModelCount int
	NodeMean   float64
	NodeStd    float64
	NodeMin    int
	NodeMax    int
	EdgeMean   float64
	EdgeStd    float64
	EdgeMin    int
	EdgeMax    int
}

// LoadCounts returns the node and edge counts of one graph file. The graph
// is loaded through the analysis path, normalization included, so files
// whose geometry cannot be normalized are reported as unloadable.
func LoadCounts(path string) (nodes, edges int, err error) {
	g, err := uvgraph.LoadNormalized(path)
	if err != nil {
		return 0, 0, err
	}
	return g.NumNodes(), g.NumEdges(), nil
}

// AnalyzeCategories treats each immediate subdirectory of root as one
// category and collects node/edge counts from every graph file in it.
// Unloadable files are skipped with a warning; categories where nothing
// loads are omitted from the result.
func AnalyzeCategories(root string) (map[string]CategoryStats, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", solid.ErrNotFound, root)
		}
		return nil, fmt.Errorf("stats: read %s: %w", root, err)
	}

	result := make(map[string]CategoryStats)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		cs, err := analyzeCategory(filepath.Join(root, entry.Name()))
		if err != nil {
			logrus.Warnf("category %s: %v", entry.Name(), err)
			continue
		}
		if cs.ModelCount == 0 {
			continue
		}
		result[entry.Name()] = cs
	}
	return result, nil
}

func analyzeCategory(dir string) (CategoryStats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return CategoryStats{}, err
	}

	var cs CategoryStats
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), uvgraph.GraphExt) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		nodes, edges, err := LoadCounts(path)
		if err != nil {
			logrus.Warnf("skipping %s: %v", path, err)
			continue
		}
		cs.Nodes = append(cs.Nodes, nodes)
		cs.Edges = append(cs.Edges, edges)
		cs.ModelCount++
	}
	return cs, nil
}

// Summarize turns category stats into report rows ordered by category
// name. Standard deviations are population deviations (divide by N).
func Summarize(categories map[string]CategoryStats) []Summary {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]Summary, 0, len(names))
	for _, name := range names {
		cs := categories[name]
		nodeMean, nodeStd, nodeMin, nodeMax := describe(cs.Nodes)
		edgeMean, edgeStd, edgeMin, edgeMax := describe(cs.Edges)
		rows = append(rows, Summary{
			Category:   name,
			ModelCount: cs.ModelCount,
			NodeMean:   nodeMean,
			NodeStd:    nodeStd,
			NodeMin:    nodeMin,
			NodeMax:    nodeMax,
			EdgeMean:   edgeMean,
			EdgeStd:    edgeStd,
			EdgeMin:    edgeMin,
			EdgeMax:    edgeMax,
		})
	}
	return rows
}

// describe computes mean, population standard deviation, min and max of a
// non-empty count list.
func describe(counts []int) (mean, std float64, min, max int) {
	if len(counts) == 0 {
		return 0, 0, 0, 0
	}
	xs := make([]float64, len(counts))
	for i, c := range counts {
		xs[i] = float64(c)
	}
	mean = stat.Mean(xs, nil)
	std = stat.PopStdDev(xs, nil)
	min = int(floats.Min(xs))
	max = int(floats.Max(xs))
	return mean, std, min, max
}

// MaxNodesEdges scans a single directory of graph files and returns the
// files with the most nodes and the most edges. Unloadable files are
// skipped. Both paths are empty when nothing loads.
func MaxNodesEdges(dir string) (nodeFile string, maxNodes int, edgeFile string, maxEdges int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", 0, "", 0, fmt.Errorf("%w: %s", solid.ErrNotFound, dir)
		}
		return "", 0, "", 0, fmt.Errorf("stats: read %s: %w", dir, err)
	}

	maxNodes, maxEdges = -1, -1
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), uvgraph.GraphExt) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		nodes, edges, err := LoadCounts(path)
		if err != nil {
			logrus.Warnf("skipping %s: %v", path, err)
			continue
		}
		if nodes > maxNodes {
			maxNodes = nodes
			nodeFile = path
		}
		if edges > maxEdges {
			maxEdges = edges
			edgeFile = path
		}
	}
	if maxNodes < 0 {
		return "", 0, "", 0, nil
	}
	return nodeFile, maxNodes, edgeFile, maxEdges, nil
}
