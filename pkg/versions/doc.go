// Package versions resolves the three version identifiers of a deployment.
//
// # Resolvers
//
//   - [PackageResolver]: latest release of a PyPI package
//   - [ToolResolver]: latest GitHub release of a build tool, read from the
//     redirect of /releases/latest
//   - [InterpreterResolver]: the interpreter version pinned by a file in the
//     package's repository at the resolved tag
//
// Each resolver returns an explicit override when one is set (see
// [Override]) and only falls back to the network otherwise.
//
// # Errors
//
// Every failure is a [*ResolutionError]. Its message is meant for the
// operator and is surfaced verbatim by callers; the underlying transport
// error is kept as the cause for errors.As.
package versions
