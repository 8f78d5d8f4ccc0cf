// Package file persists configuration to a TOML file in the app data
// directory. Writes go through a temp-file rename so a crash mid-write
// never leaves a torn config behind.
package file
