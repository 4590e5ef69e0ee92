// Package repository contains generic repositories, so that a context does not
// need to implement the same CRUD methods for each of its entities.
//
// The MemoryRepository is used for testing and local development.
// Sometimes it might be handy to persist some data, so it is possible to use a Store to do so.
// This is NOT intended for production use and only recommended for local demoing of an application.
// The PostgresRepository is the production implementation of the same methods.
//
// Writes take part in a unit of work, if the context carries one:
// for the MemoryRepository it is the change set started by MemoryUnitOfWork.Begin,
// for the PostgresRepository the transaction started by postgres.UnitOfWork.
package repository
