// Package volumes enumerates connected drives and mounted user volumes.
//
// Two backends exist: UDisks2 over the system D-Bus, and a procfs backend
// that reads /sys/block and /proc/mounts directly for systems without a
// running udisksd. Open picks one according to the [monitor] configuration.
package volumes
