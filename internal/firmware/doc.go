// Package firmware ties the container codec and the defaults locator into
// the load, inspect, patch and save workflow used by the CLI.
//
// A File holds one decoded firmware file. Nothing is written until Save is
// called, and Save writes atomically: the encoded file goes to a temporary
// file in the target directory which is renamed over the target only after
// it has been fully written and synced. A failure at any step leaves the
// original file untouched.
//
//	fw, err := firmware.Load("arducopter.apj")
//	if err != nil {
//	    return err
//	}
//	hdr, err := fw.Locate()
//	if err != nil {
//	    return err // defaults.ErrNotFound for firmware without support
//	}
//	if err := fw.SetContentsFromFile("fmuv3.parm"); err != nil {
//	    return err // *defaults.TooLargeError if it does not fit
//	}
//	return fw.Save("")
package firmware
