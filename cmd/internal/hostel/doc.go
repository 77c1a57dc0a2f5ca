// Package hostel holds the residential domain: students and their rooms,
// daily attendance, monthly fees, complaints, and notifications.
//
// Identity (accounts, roles, credentials) lives in cmd/identity; hostel rows
// reference users by id only. Persistence follows the same split as the auth
// packages: a PostgresStore for production and a MemoryStore with identical
// semantics for tests and DB-less development.
package hostel
