// Package preflight provides readiness checks for the external services and
// filesystem paths podsweep depends on.
//
// These checks run in two contexts:
//   - The workflow manager calls RunAll before starting the processing lanes.
//     If any check fails, startup halts to avoid wasting time on a doomed run.
//   - The CLI "podsweep status" command uses individual check functions
//     (CheckService, CheckDirectoryAccess) to display service health.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
