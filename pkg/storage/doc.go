// Package storage defines the account and token store contracts and the
// in-memory implementation used for tests and single-process runs.
//
// The critical contract is CreateAccount: it must be an atomic
// create-if-absent keyed by account name. Under concurrent creation
// attempts for the same new name, exactly one caller succeeds and every
// other caller observes ErrNameTaken. The login-or-create flow depends on
// this to convert creation races into ordinary logins.
//
// Backend implementations live in the postgres and sqlite subpackages.
package storage
