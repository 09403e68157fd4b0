// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The catalog in issue.go holds Markdown guidance for each
// packaging and verification failure, rendered with glamour by the CLI.
package issue
