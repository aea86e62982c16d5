// Package uvgraph defines the face-adjacency feature graph produced from a
// boundary-representation solid, the builder that constructs it, the
// geometric normalizer, and the binary graph-file codec.
package uvgraph

// NodeFeatureWidth is the per-sample width of a node feature row:
// 3 position values, 3 normal values, 1 visibility flag.
const NodeFeatureWidth = 7

// EdgeFeatureWidth is the per-sample width of an edge feature row:
// 3 position values, 3 tangent values.
const EdgeFeatureWidth = 6

// Graph is the conversion artifact for one solid. Node index equals the
// face's position in the solid's face enumeration; node and edge order are
// never resorted. A Graph is immutable after construction except for the
// Normalize coordinate transform, which returns a new Graph.
type Graph struct {
	// Src and Dst list the face index pair of each retained edge, in the
	// order edges were encountered over the face adjacency.
	Src []int `msgpack:"src"`
	Dst []int `msgpack:"dst"`

	// NodeFeatures[i] is the flattened SurfU x SurfV sample grid of face i,
	// row-major with v varying fastest, NodeFeatureWidth values per sample.
	NodeFeatures [][]float64 `msgpack:"node_features"`

	// EdgeFeatures[j] is the flattened CurveU sample run of edge j,
	// EdgeFeatureWidth values per sample.
	EdgeFeatures [][]float64 `msgpack:"edge_features"`

	// Sampling resolution the graph was built with.
	CurveU int `msgpack:"curve_u"`
	SurfU  int `msgpack:"surf_u"`
	SurfV  int `msgpack:"surf_v"`
}

// NumNodes returns the number of face nodes.
func (g *Graph) NumNodes() int { return len(g.NodeFeatures) }

// NumEdges returns the number of retained edges.
func (g *Graph) NumEdges() int { return len(g.EdgeFeatures) }

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Src:          append([]int(nil), g.Src...),
		Dst:          append([]int(nil), g.Dst...),
		NodeFeatures: make([][]float64, len(g.NodeFeatures)),
		EdgeFeatures: make([][]float64, len(g.EdgeFeatures)),
		CurveU:       g.CurveU,
		SurfU:        g.SurfU,
		SurfV:        g.SurfV,
	}
	for i, f := range g.NodeFeatures {
		c.NodeFeatures[i] = append([]float64(nil), f...)
	}
	for i, f := range g.EdgeFeatures {
		c.EdgeFeatures[i] = append([]float64(nil), f...)
	}
	return c
}
