// Package logger provides structured logging for etlkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying pipeline fields (run, stage, source,
// chunk). Library packages log through Get(component) and never write to
// stdout on their own. Register routes one component to a chosen logger;
// the fallback global logger can be replaced with SetGlobalLogger.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	logger.Register("sink.csv", logger.New(&cfg, "etl"))
//	log := logger.Get("source")
//	log.Debug("chunk loaded", logger.Fields(logger.FieldChunk, 3, logger.FieldCount, 1000))
package logger
