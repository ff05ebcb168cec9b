// Package planner handles the planning phase of apply batches.
//
// The planner turns the approved candidates of a registry into a
// deterministic list of relocation operations. It resolves each destination
// against the folder taxonomy, validates path safety and reports conflicts
// (occupied destinations, two items claiming the same destination) so a dry
// run can show them without touching the filesystem.
//
// Key responsibilities:
//   - Generate ApplyPlan with operations ordered by relative path
//   - Detect conflicts before execution
//   - Validate path safety before operations
//
// Conflicts are advisory. Execution re-checks every destination because the
// filesystem can change between planning and execution.
package planner
