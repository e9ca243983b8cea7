// Package core provides the account and customer workflows behind the
// lookup API.
//
// This package holds the domain rules independent of HTTP. It can be used
// by web handlers, the operator CLI, or tests without modification.
//
// # Architecture
//
//   - Service: the entry point for every workflow (accounts, companies,
//     contracts, one-time codes, password reset).
//   - Store: the persistence surface. [PgStore] implements it over pgx;
//     tests use an in-memory store.
//   - HashLimiter: bounds concurrent bcrypt work.
//
// # Sessions
//
// An account can hold one session at a time. [Service.Login] claims the
// is_authenticated flag; [Service.Logout] or an administrator calling
// [Service.SetAuthenticated] releases it.
//
// # Error Handling
//
// Services return sentinel errors ([ErrNotFound], [ErrConflict],
// [ErrInvalidCredentials], ...). [MapError] turns any error into a
// [UserMessage] with a support code:
//
//   - AUTH001-AUTH007: login, tokens, roles, reset links
//   - USR001-USR003: user records
//   - CMP001, CTR001: companies and contracts
//   - CODE001: one-time codes
//   - NCM001-NCM002: spreadsheet lookup
//   - DB001-DB008: database failures
package core
