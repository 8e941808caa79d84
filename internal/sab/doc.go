// Package sab reads the SABnzbd script contract.
//
// SABnzbd invokes hook scripts with job details in SAB_* environment
// variables and, for the pre-queue hook, reads a seven-line response from
// stdout where the first line decides whether the job is accepted. Both
// sides of that contract live here so handler code never touches os.Getenv
// or stdout formatting directly.
package sab
