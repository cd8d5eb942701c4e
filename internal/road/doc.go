// Package road models a closed-loop road centerline and converts vehicle
// states between the road-relative Frenet frame (arc length s, lateral
// offset d) and world Cartesian coordinates.
//
// A Model is built once from an ordered waypoint list and is read-only
// afterwards, so it may be shared by any number of goroutines. Lateral
// offsets are measured along the right-hand normal of the direction of
// travel: positive d lies to the right of the centerline.
package road
