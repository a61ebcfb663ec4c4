/*
Package manifest keeps a SQLite-backed history of generation runs: when each
run started and finished, how it ended, and which pages it wrote.

The manifest is write-only history. Nothing in it is read back to decide what
a later run generates; every run regenerates the full page set.
*/
package manifest
