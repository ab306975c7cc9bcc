// Package logger is a thin factory around log/slog with functional options,
// shared attribute constructors, and transparent injection of context values.
//
// New builds a *slog.Logger whose handler runs registered ContextExtractor
// callbacks on every record, so request-scoped values like the tenant id are
// attached automatically:
//
//	log := logger.New(
//	    logger.WithProduction("steward"),
//	    logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "session opened", logger.Duration(time.Since(start)))
//
// Attribute constructors (TenantID, Database, Stage, Error, ...) keep key
// names consistent across the codebase. Error and Errors return empty attrs
// for nil errors, so they can be passed unconditionally.
package logger
