// Package storage provides the object-storage client used to archive
// comparison reports.
//
// The Client interface wraps the Minio SDK with the operations the archive
// needs (bucket checks, uploads, downloads), so tests can substitute the
// mocks package.
package storage
