package geometry

// DefaultTolerance is the default merge distance for endpoint clustering, in pixels.
const DefaultTolerance = 10.0

// ClusterGroup is one merged vertex together with the input indices it absorbed.
type ClusterGroup struct {
	// Center is the arithmetic mean of the absorbed points.
	Center Point `json:"center"`

	// Members are indices into the clustered input, seed first.
	Members []int `json:"members"`
}

// Cluster merges nearby points into vertex candidates and returns their centroids
// in the order the clusters were opened.
//
// See ClusterGroups for the merge rule.
func Cluster(points []Point, tolerance float64) []Point {
	groups := ClusterGroups(points, tolerance)
	if groups == nil {
		return nil
	}
	centers := make([]Point, len(groups))
	for i, g := range groups {
		centers[i] = g.Center
	}
	return centers
}

// ClusterGroups performs greedy seed-based single-linkage clustering.
//
// Points are visited in input order. A point that has not been absorbed yet
// opens a new cluster as its seed; every later unabsorbed point whose distance
// to the seed is at most tolerance joins that cluster. Membership is decided
// against the seed only, so the grouping is not transitive.
//
// Complexity is O(n²), fine for the tens of endpoints a floor plan produces.
func ClusterGroups(points []Point, tolerance float64) []ClusterGroup {
	if len(points) == 0 {
		return nil
	}

	used := make([]bool, len(points))
	groups := make([]ClusterGroup, 0)

	for i, seed := range points {
		if used[i] {
			continue
		}
		used[i] = true

		members := []int{i}
		sumX, sumY := seed.X, seed.Y

		for j := i + 1; j < len(points); j++ {
			if used[j] {
				continue
			}
			if Distance(seed, points[j]) <= tolerance {
				used[j] = true
				members = append(members, j)
				sumX += points[j].X
				sumY += points[j].Y
			}
		}

		n := float64(len(members))
		groups = append(groups, ClusterGroup{
			Center:  Point{X: sumX / n, Y: sumY / n},
			Members: members,
		})
	}

	return groups
}
