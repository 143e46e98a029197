// Package logger provides structured logging for execkit using zerolog.
//
// Every package logs through a component-scoped logger obtained with Get,
// so diagnostics from the process core carry component=process and can be
// filtered or silenced independently of the CLI.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//	  output: "stderr"
//
// # Usage
//
//	log := logger.Get("process")
//	log.Debug("process exited", logger.Fields(logger.FieldPID, pid, logger.FieldStatus, 0))
package logger
