package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// Configuration errors
	ConfigInvalidError

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	RemoveFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Database errors
	DBConnectionError
	DBTableCheckError
	DBEmptyDatabaseError
	DBNotConnectedError
	DBTableExistsCheckError
	DBQueryTablesError
	DBScanTableError
	DBDropTableError

	// Schema errors
	SchemaGORMConnectionError
	SchemaCreateError
	SchemaMigrateError
	SchemaCollationError

	// Store errors
	StoreQueryError
	StoreInsertError
	StoreUpdateError
	StoreDeleteError
	StoreStreamError

	// Lineage source errors
	FetchRequestError
	FetchStatusError
	FetchCacheError

	// Reconciler errors
	SyncError
	SyncRefreshError
	SyncFallbackError

	// Rebuilder errors
	RebuildStreamError

	// Aggregator errors
	StatsRollupError
	StatsOrphanError
	StatsDistributionError

	// Export errors
	ExportSQLiteError
	ExportUploadError

	// Invalid caller input
	QueryInvalidError
	TaxonNotFoundError
)
