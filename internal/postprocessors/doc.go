// Package postprocessors turns extracted document text into chunks.
// Processors run as an ordered pipeline: the chunker is the standard
// first stage and creates the chunks, later stages receive and may
// rewrite them.
//
// Stages are constructed through a registry keyed by processor name,
// so pipelines can be assembled from user configuration.
package postprocessors
