// Package pipeline provides a framework for executing report steps in
// sequence.
//
// The pipeline pattern is used to take a page through the full report run:
// rendering, resource classification, emissions estimation, report assembly,
// and persistence. Each stage is implemented as a Step that receives the
// current run state and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running renders
// 4. It enables potential parallelization of independent steps in the future
//
// The pipeline supports both individual runs and batch processing with
// concurrency control using errgroup.
package pipeline
