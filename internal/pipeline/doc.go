// Package pipeline provides a framework for executing comparison stages in
// sequence and for fanning page work out to a bounded number of goroutines.
//
// A comparison run moves through validation, document opening, per-page
// comparison, report building and archive packaging. Each stage is a Step
// that receives the shared run state. Per-page work is spread over a
// BatchProcessor, which limits concurrency with errgroup and returns results
// in page order regardless of completion order.
package pipeline
