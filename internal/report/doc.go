// Package report prints capture summaries and capture history.
//
//   - TextWriter: the console lines "Wrote <path>" and
//     "Size: <n> KB, scripts remaining: <m>", plus details when verbose
//   - JSONWriter: the summary as JSON, for scripts
//   - MarkdownWriter: tables built with github.com/nao1215/markdown, for
//     pasting into pull requests
//
// All writers also render the history kept by the database package.
package report
