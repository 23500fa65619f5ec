// Command totem-disc inspects optical drives and mounted volumes, classifies
// discs on demand, and runs the watch daemon that classifies every inserted
// medium and records the outcome.
//
// Subcommands: watch, status, drives, volumes, history and config.
package main
