// Command disc-test classifies one device or directory and prints the
// detected media type. On failure it prints the diagnostic followed by the
// connected drives and mounted volumes, then exits with status 1.
//
//	disc-test /dev/sr0
//	disc-test /media/cdrom
package main
