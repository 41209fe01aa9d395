// Package manifest stamps embedded defaults into a set of firmware files
// described by a YAML manifest.
//
// Release builds typically produce one firmware per board and need a
// different defaults file per deployment. A manifest lists those pairings:
//
//	version: 1
//	base_dir: ../build
//	targets:
//	  - name: copter-fmuv3
//	    firmware: fmuv3/bin/arducopter.apj
//	    defaults: defaults/fmuv3.parm
//	    output: release/arducopter-fmuv3.apj
//
// Relative paths resolve against base_dir, which itself resolves against
// the manifest's directory. A target without output is rewritten in place.
//
// Targets are processed in order. Each target is loaded, patched and saved
// independently, so a failure never leaves a half-written file behind.
package manifest
