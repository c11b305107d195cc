// Package guid turns the GUIDs in a firmware boot log into readable names.
//
// Names come from the Guid.xref files written by the EDK2 build, one
// "<GUID> <name>" pair per line. Several files can be merged; later files
// override earlier ones. Substitution is a single left-to-right pass over the
// log, so a name that happens to contain another GUID is never rewritten.
package guid
