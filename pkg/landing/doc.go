/*
Package landing generates static keyword landing pages.

A run reads a keyword list and a photo list, pairs every keyword with a photo
by line position, renders one HTML page per keyword from an html/template
page template and writes it to <output_dir>/<slug>.html. The locations of the
written pages are collected into a sitemap that is written once, after every
page has been written successfully.

Page files and the sitemap are rendered into memory first and then written
atomically, so an aborted run never leaves a half-written file behind.
*/
package landing
