// Package fileops provides the small set of filesystem helpers the skill
// inventory relies on: bounded directory scanning, path and size
// validation, and identifier sanitization.
package fileops
