// Package export turns the pages of a content store into a tree of static
// files under a single output root.
//
// A Builder drives one run at a time: it walks the target pages in index
// order, fans each page out over the configured languages, asks a Filter
// whether the language version belongs in the export, maps its URL to a file
// under the output root, renders it with the external Renderer, rewrites
// internal links away from the marker URL and writes the result. Whole-site
// runs then copy the configured asset mappings. Every action lands in the
// run's Summary.
//
// No write ever leaves the output root: page destinations, attached files and
// asset destinations are all checked with pathsafe.Contains first.
package export
