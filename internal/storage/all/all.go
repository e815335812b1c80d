// Package all registers every storage backend. Import for side effects from
// binaries that let the operator pick the backend at runtime.
package all

import (
	_ "dataprof/internal/storage/mssql"
	_ "dataprof/internal/storage/postgres"
	_ "dataprof/internal/storage/sqlite"
)
