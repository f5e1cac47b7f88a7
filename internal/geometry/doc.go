// Package geometry holds the pixel-space primitives of the blueprint pipeline
// and the two purely geometric stages that sit between line detection and
// scale estimation: endpoint clustering and polygon ordering.
//
// # Coordinate System
//
// Points use the image convention: origin at the top-left corner, X grows
// rightward and Y grows downward. Coordinates are float64 because cluster
// centroids fall between pixels.
//
// # Clustering
//
// Cluster merges segment endpoints that lie within a tolerance of a cluster
// seed. The merge is seed-based rather than transitive: two points that are
// both near a third point but far from each other end up in the same cluster
// only if both are within tolerance of the seed that opened it.
//
// # Ordering
//
// OrderPolygon sorts vertices by the angle of the vector from their centroid.
// The result is star-shaped around the centroid, which is correct for convex
// and near-rectangular rooms but not a true winding for concave outlines.
package geometry
