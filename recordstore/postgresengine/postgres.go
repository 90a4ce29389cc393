package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/openshelf/lending-engine-go/recordstore"
	"github.com/openshelf/lending-engine-go/recordstore/postgresengine/internal/adapters"
)

const (
	defaultRecordTableName        = "records"
	logMsgBuildSelectQueryFailed  = "failed to build select query"
	logMsgDBQueryFailed           = "database query execution failed"
	logMsgCloseRowsFailed         = "failed to close database rows"
	logMsgScanRowFailed           = "failed to scan database row"
	logMsgBuildRecordFailed       = "failed to build storable record from database row"
	logMsgBuildWriteQueryFailed   = "failed to build write query"
	logMsgBeginTxFailed           = "failed to begin transaction"
	logMsgDBExecFailed            = "database execution failed during record commit"
	logMsgRollbackFailed          = "failed to roll back transaction"
	logMsgCommitTxFailed          = "failed to commit transaction"
	logMsgRowsAffectedFailed      = "failed to get rows affected count"
	logMsgQueryCompleted          = "query completed"
	logMsgRecordsCommitted        = "records committed"
	logMsgConcurrencyConflict     = "concurrency conflict detected"
	logMsgSQLExecuted             = "executed sql for: "
	logMsgOperation               = "recordstore operation: "
	logAttrError                  = "error"
	logAttrQuery                  = "query"
	logAttrRecordType             = "record_type"
	logAttrRecordKey              = "record_key"
	logAttrRecordCount            = "record_count"
	logAttrDurationMS             = "duration_ms"
	logAttrExpectedVersion        = "expected_version"
	logAttrRowsAffected           = "rows_affected"
	logActionQuery                = "query"
	logActionCommit               = "commit"
	colRecordType                 = "record_type"
	colRecordKey                  = "record_key"
	colPayload                    = "payload"
	colVersion                    = "version"
	colUpdatedAt                  = "updated_at"
	dialectPostgres               = "postgres"
	castJsonb                     = "?::jsonb"
	sqlNow                        = "now()"
	metricQueryDuration           = "recordstore_query_duration_seconds"
	metricCommitDuration          = "recordstore_commit_duration_seconds"
	metricConcurrencyConflicts    = "recordstore_concurrency_conflicts_total"
	metricOperationErrors         = "recordstore_operation_errors_total"
	metricLabelOperation          = "operation"
	tracingSpanQuery              = "recordstore.query"
	tracingSpanCommit             = "recordstore.commit"
	tracingStatusOK               = "ok"
	tracingStatusError            = "error"
	tracingStatusConflict         = "conflict"
)

type (
	sqlQueryString = string
	queryDuration  = time.Duration
)

// RecordStore persists versioned entity records in Postgres.
// It leverages a database adapter and supports customizable logging,
// metrics, tracing, and record table configuration.
type RecordStore struct {
	db               adapters.DBAdapter
	recordTableName  string
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

type queryResultRow struct {
	recordType string
	recordKey  string
	payload    []byte
	version    recordstore.VersionUint
	updatedAt  time.Time
}

// NewRecordStoreFromPGXPool creates a new RecordStore using a pgx Pool with optional configuration.
func NewRecordStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (RecordStore, error) {
	if db == nil {
		return RecordStore{}, recordstore.ErrNilDatabaseConnection
	}

	rs := RecordStore{
		db:              adapters.NewPGXAdapter(db),
		recordTableName: defaultRecordTableName,
	}

	for _, option := range options {
		if err := option(&rs); err != nil {
			return RecordStore{}, err
		}
	}

	return rs, nil
}

// NewRecordStoreFromPGXPoolWithReplica creates a new RecordStore using a primary pgx Pool
// and a read replica used for eventually consistent queries.
func NewRecordStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (RecordStore, error) {
	if db == nil || replica == nil {
		return RecordStore{}, recordstore.ErrNilDatabaseConnection
	}

	rs := RecordStore{
		db:              adapters.NewPGXAdapterWithReplica(db, replica),
		recordTableName: defaultRecordTableName,
	}

	for _, option := range options {
		if err := option(&rs); err != nil {
			return RecordStore{}, err
		}
	}

	return rs, nil
}

// NewRecordStoreFromSQLDB creates a new RecordStore using a sql.DB with optional configuration.
func NewRecordStoreFromSQLDB(db *sql.DB, options ...Option) (RecordStore, error) {
	if db == nil {
		return RecordStore{}, recordstore.ErrNilDatabaseConnection
	}

	rs := RecordStore{
		db:              adapters.NewSQLAdapter(db),
		recordTableName: defaultRecordTableName,
	}

	for _, option := range options {
		if err := option(&rs); err != nil {
			return RecordStore{}, err
		}
	}

	return rs, nil
}

// NewRecordStoreFromSQLX creates a new RecordStore using a sqlx.DB with optional configuration.
func NewRecordStoreFromSQLX(db *sqlx.DB, options ...Option) (RecordStore, error) {
	if db == nil {
		return RecordStore{}, recordstore.ErrNilDatabaseConnection
	}

	rs := RecordStore{
		db:              adapters.NewSQLXAdapter(db),
		recordTableName: defaultRecordTableName,
	}

	for _, option := range options {
		if err := option(&rs); err != nil {
			return RecordStore{}, err
		}
	}

	return rs, nil
}

// Query retrieves records from the Postgres record store based on the provided
// recordstore.Filter criteria and returns them as recordstore.StorableRecords,
// each carrying the version observed at read time.
func (rs RecordStore) Query(ctx context.Context, filter recordstore.Filter) (recordstore.StorableRecords, error) {
	var empty recordstore.StorableRecords

	ctx, span := rs.startSpan(ctx, tracingSpanQuery)

	sqlQuery, buildQueryErr := rs.buildSelectQuery(filter)
	if buildQueryErr != nil {
		rs.logError(ctx, logMsgBuildSelectQueryFailed, logAttrError, buildQueryErr.Error())
		rs.finishSpan(span, tracingStatusError)

		return empty, buildQueryErr
	}

	rows, duration, queryErr := rs.executeQuery(ctx, sqlQuery)
	if queryErr != nil {
		rs.incrementErrorMetric(ctx, logActionQuery)
		rs.finishSpan(span, tracingStatusError)

		return empty, queryErr
	}
	defer rs.closeRows(ctx, rows)

	records, scanErr := rs.processQueryResults(ctx, rows)
	if scanErr != nil {
		rs.incrementErrorMetric(ctx, logActionQuery)
		rs.finishSpan(span, tracingStatusError)

		return empty, scanErr
	}

	rs.logOperation(ctx,
		logMsgQueryCompleted,
		logAttrRecordCount, len(records),
		logAttrDurationMS, rs.durationToMilliseconds(duration))

	rs.recordDurationMetric(ctx, metricQueryDuration, logActionQuery, duration)
	rs.finishSpan(span, tracingStatusOK)

	return records, nil
}

// Commit applies one or multiple conditional record writes atomically.
//
// Every write carries the version the writer observed when it read the
// record (0 for a record that must not exist yet). All writes execute in a
// single transaction; if any of them affects no row - because another writer
// changed the record in the meantime - the whole transaction is rolled back
// and recordstore.ErrConcurrencyConflict is returned. Either the complete
// state transition is committed or none of it is.
func (rs RecordStore) Commit(ctx context.Context, write recordstore.RecordWrite, additionalWrites ...recordstore.RecordWrite) error {
	allWrites := append([]recordstore.RecordWrite{write}, additionalWrites...)

	ctx, span := rs.startSpan(ctx, tracingSpanCommit)

	start := time.Now()

	tx, beginErr := rs.db.BeginTx(ctx)
	if beginErr != nil {
		rs.logError(ctx, logMsgBeginTxFailed, logAttrError, beginErr.Error())
		rs.incrementErrorMetric(ctx, logActionCommit)
		rs.finishSpan(span, tracingStatusError)

		return errors.Join(recordstore.ErrCommittingRecordsFailed, beginErr)
	}

	for _, w := range allWrites {
		if execErr := rs.executeWrite(ctx, tx, w); execErr != nil {
			rs.rollback(ctx, tx)

			if errors.Is(execErr, recordstore.ErrConcurrencyConflict) {
				rs.incrementConflictMetric(ctx)
				rs.finishSpan(span, tracingStatusConflict)
			} else {
				rs.incrementErrorMetric(ctx, logActionCommit)
				rs.finishSpan(span, tracingStatusError)
			}

			return execErr
		}
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		rs.logError(ctx, logMsgCommitTxFailed, logAttrError, commitErr.Error())
		rs.incrementErrorMetric(ctx, logActionCommit)
		rs.finishSpan(span, tracingStatusError)

		return errors.Join(recordstore.ErrCommittingRecordsFailed, commitErr)
	}

	duration := time.Since(start)

	rs.logOperation(ctx,
		logMsgRecordsCommitted,
		logAttrRecordCount, len(allWrites),
		logAttrDurationMS, rs.durationToMilliseconds(duration),
	)

	rs.recordDurationMetric(ctx, metricCommitDuration, logActionCommit, duration)
	rs.finishSpan(span, tracingStatusOK)

	return nil
}

// executeWrite runs a single conditional write on the transaction and
// validates that it affected exactly one row.
func (rs RecordStore) executeWrite(ctx context.Context, tx adapters.DBTx, write recordstore.RecordWrite) error {
	sqlQuery, buildQueryErr := rs.buildWriteQuery(write)
	if buildQueryErr != nil {
		rs.logError(ctx, logMsgBuildWriteQueryFailed,
			logAttrError, buildQueryErr.Error(),
			logAttrRecordType, write.Record.RecordType)

		return buildQueryErr
	}

	start := time.Now()
	result, execErr := tx.Exec(ctx, sqlQuery)
	rs.logQueryWithDuration(ctx, sqlQuery, logActionCommit, time.Since(start))

	if execErr != nil {
		rs.logError(ctx, logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)

		return errors.Join(recordstore.ErrCommittingRecordsFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		rs.logError(ctx, logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())

		return errors.Join(recordstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	if rowsAffected != 1 {
		rs.logOperation(ctx,
			logMsgConcurrencyConflict,
			logAttrRecordType, write.Record.RecordType,
			logAttrRecordKey, write.Record.RecordKey,
			logAttrExpectedVersion, write.ExpectedVersion,
			logAttrRowsAffected, rowsAffected,
		)

		return recordstore.ErrConcurrencyConflict
	}

	return nil
}

// executeQuery executes the SQL query and returns rows with timing information.
func (rs RecordStore) executeQuery(ctx context.Context, sqlQuery string) (
	adapters.DBRows,
	queryDuration,
	error,
) {

	start := time.Now()
	rows, queryErr := rs.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	rs.logQueryWithDuration(ctx, sqlQuery, logActionQuery, duration)

	if queryErr != nil {
		rs.logError(ctx, logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)

		return nil, duration, errors.Join(recordstore.ErrQueryingRecordsFailed, queryErr)
	}

	return rows, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (rs RecordStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		rs.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// processQueryResults processes database rows and converts them to storable records.
func (rs RecordStore) processQueryResults(ctx context.Context, rows adapters.DBRows) (
	recordstore.StorableRecords,
	error,
) {

	var empty recordstore.StorableRecords
	result := queryResultRow{}
	records := make(recordstore.StorableRecords, 0)

	for rows.Next() {
		rowScanErr := rows.Scan(&result.recordType, &result.recordKey, &result.payload, &result.version, &result.updatedAt)
		if rowScanErr != nil {
			rs.logError(ctx, logMsgScanRowFailed, logAttrError, rowScanErr.Error())

			return empty, errors.Join(recordstore.ErrScanningDBRowFailed, rowScanErr)
		}

		record, buildRecordErr := recordstore.BuildStorableRecord(result.recordType, result.recordKey, result.payload, result.version)
		if buildRecordErr != nil {
			rs.logError(ctx, logMsgBuildRecordFailed, logAttrError, buildRecordErr.Error(), logAttrRecordType, result.recordType)

			return empty, errors.Join(recordstore.ErrQueryingRecordsFailed, buildRecordErr)
		}

		record.UpdatedAt = result.updatedAt
		records = append(records, record)
	}

	return records, nil
}

func (rs RecordStore) buildSelectQuery(filter recordstore.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(rs.recordTableName).
		Select(colRecordType, colRecordKey, colPayload, colVersion, colUpdatedAt).
		Order(goqu.I(colRecordType).Asc(), goqu.I(colRecordKey).Asc())

	selectStmt = rs.addWhereClause(filter, selectStmt)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(recordstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// buildWriteQuery builds the conditional insert or update for a single write.
//
// ExpectedVersion 0 builds an INSERT ... ON CONFLICT DO NOTHING, so a
// concurrent insert of the same (record_type, record_key) surfaces as zero
// rows affected. Any other version builds an UPDATE guarded by the version
// column, the state-based twin of an event store's guarded append.
func (rs RecordStore) buildWriteQuery(write recordstore.RecordWrite) (sqlQueryString, error) {
	builder := goqu.Dialect(dialectPostgres)
	payloadExpr := goqu.L(castJsonb, string(write.Record.PayloadJSON))

	var stmt exp.SQLExpression

	if write.ExpectedVersion == 0 {
		stmt = builder.
			Insert(rs.recordTableName).
			Cols(colRecordType, colRecordKey, colPayload, colVersion, colUpdatedAt).
			Vals(goqu.Vals{write.Record.RecordType, write.Record.RecordKey, payloadExpr, 1, goqu.L(sqlNow)}).
			OnConflict(goqu.DoNothing())
	} else {
		stmt = builder.
			Update(rs.recordTableName).
			Set(goqu.Record{
				colPayload:   payloadExpr,
				colVersion:   write.ExpectedVersion + 1,
				colUpdatedAt: goqu.L(sqlNow),
			}).
			Where(
				goqu.C(colRecordType).Eq(write.Record.RecordType),
				goqu.C(colRecordKey).Eq(write.Record.RecordKey),
				goqu.C(colVersion).Eq(write.ExpectedVersion),
			)
	}

	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(recordstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (rs RecordStore) addWhereClause(filter recordstore.Filter, selectStmt *goqu.SelectDataset) *goqu.SelectDataset {
	expressions := make([]goqu.Expression, 0)

	typeExpressions := make([]goqu.Expression, 0)
	for _, recordType := range filter.RecordTypes() {
		typeExpressions = append(typeExpressions, goqu.Ex{colRecordType: recordType})
	}

	if len(typeExpressions) > 0 {
		// record types are always filtered with OR
		expressions = append(expressions, goqu.Or(typeExpressions...))
	}

	keyExpressions := make([]goqu.Expression, 0)
	for _, key := range filter.RecordKeys() {
		keyExpressions = append(keyExpressions, goqu.Ex{colRecordKey: key})
	}

	if len(keyExpressions) > 0 {
		expressions = append(expressions, goqu.Or(keyExpressions...))
	}

	predicateExpressions := make([]goqu.Expression, 0)
	for _, predicate := range filter.Predicates() {
		predicateExpressions = append(
			predicateExpressions,
			goqu.L(fmt.Sprintf(`%s @> '{"%s": "%s"}'`, colPayload, predicate.Key(), predicate.Val())),
		)
	}

	if len(predicateExpressions) > 0 {
		if filter.AllPredicatesMustMatch() {
			expressions = append(expressions, goqu.And(predicateExpressions...))
		} else {
			expressions = append(expressions, goqu.Or(predicateExpressions...))
		}
	}

	if len(expressions) > 0 {
		selectStmt = selectStmt.Where(goqu.And(expressions...))
	}

	return selectStmt
}

// rollback aborts the transaction and logs any rollback failure.
func (rs RecordStore) rollback(ctx context.Context, tx adapters.DBTx) {
	if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
		rs.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error())
	}
}

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
func (rs RecordStore) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	if rs.contextualLogger != nil {
		rs.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, rs.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
		return
	}

	if rs.logger != nil {
		rs.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, rs.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (rs RecordStore) logOperation(ctx context.Context, action string, args ...any) {
	if rs.contextualLogger != nil {
		rs.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if rs.logger != nil {
		rs.logger.Info(logMsgOperation+action, args...)
	}
}

func (rs RecordStore) logWarn(ctx context.Context, msg string, args ...any) {
	if rs.contextualLogger != nil {
		rs.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if rs.logger != nil {
		rs.logger.Warn(msg, args...)
	}
}

func (rs RecordStore) logError(ctx context.Context, msg string, args ...any) {
	if rs.contextualLogger != nil {
		rs.contextualLogger.ErrorContext(ctx, msg, args...)
		return
	}

	if rs.logger != nil {
		rs.logger.Error(msg, args...)
	}
}

func (rs RecordStore) recordDurationMetric(ctx context.Context, metric string, operation string, duration time.Duration) {
	if rs.metricsCollector == nil {
		return
	}

	labels := map[string]string{metricLabelOperation: operation}

	if contextual, ok := rs.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	rs.metricsCollector.RecordDuration(metric, duration, labels)
}

func (rs RecordStore) incrementConflictMetric(ctx context.Context) {
	if rs.metricsCollector == nil {
		return
	}

	labels := map[string]string{metricLabelOperation: logActionCommit}

	if contextual, ok := rs.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metricConcurrencyConflicts, labels)
		return
	}

	rs.metricsCollector.IncrementCounter(metricConcurrencyConflicts, labels)
}

func (rs RecordStore) incrementErrorMetric(ctx context.Context, operation string) {
	if rs.metricsCollector == nil {
		return
	}

	labels := map[string]string{metricLabelOperation: operation}

	if contextual, ok := rs.metricsCollector.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metricOperationErrors, labels)
		return
	}

	rs.metricsCollector.IncrementCounter(metricOperationErrors, labels)
}

func (rs RecordStore) startSpan(ctx context.Context, name string) (context.Context, SpanContext) {
	if rs.tracingCollector == nil {
		return ctx, nil
	}

	return rs.tracingCollector.StartSpan(ctx, name, map[string]string{"table": rs.recordTableName})
}

func (rs RecordStore) finishSpan(span SpanContext, status string) {
	if rs.tracingCollector == nil || span == nil {
		return
	}

	rs.tracingCollector.FinishSpan(span, status, nil)
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (rs RecordStore) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
