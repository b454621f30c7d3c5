// Package logging provides structured logging using uber/zap.
//
// Production mode writes JSON lines; development mode writes colored
// console output at debug level. Components take a *Logger and derive
// children with Named or Workspace so every line carries its origin:
//
//	logger := logging.NewDefault()
//	logger.Named("session").Workspace(id).Info("workspace created")
package logging
