// Package visual aligns page rasters onto a common canvas and computes the
// pixel-level difference between them.
//
// Pages of different sizes are padded with white to the element-wise maximum
// of their dimensions and are never scaled, so pixels are compared at the
// resolution they were rendered at. A pixel is changed when the average of
// its absolute R, G and B differences reaches the threshold; lower thresholds
// mark more pixels as changed.
package visual
