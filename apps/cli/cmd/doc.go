// Package cmd implements the hitsheet CLI commands using Cobra.
//
// Available commands:
//   - run: Compile the workbook, execute it and write the results copy
//   - generate: Compile the workbook into a Postman collection only
//   - reconcile: Write the results of an existing runner report
//   - list: Display the requests each sheet compiles to
//   - validate: Check the compiled collection without executing it
//   - init: Create a sample config and workbook
//   - version: Show hitsheet version information
//
// Configuration comes from services_config.yaml, HITSHEET_* environment
// variables and flags, in increasing order of precedence.
package cmd
