// Command loopguard is a duplicate-download guard for SABnzbd.
//
// The prequeue and postprocess subcommands are wired into SABnzbd as its
// pre-queue and post-processing scripts; the remaining subcommands manage
// configuration and the persisted download history.
package main
