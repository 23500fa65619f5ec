// Package daemon implements the totem-disc watch daemon.
//
// The daemon holds a single-instance lock, classifies the configured drive at
// startup, then listens for udev medium-change events over netlink. Every
// classification is logged and, when enabled, recorded in the history store.
package daemon
