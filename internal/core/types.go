// Package core exposes the service facade over schema validation, the
// versioned record store, and the visibility engine.
package core

import "archivecore/pkg/domain"

type (
	// Record aliases domain.Record for facade operations.
	Record = domain.Record
	// Repository aliases domain.Repository.
	Repository = domain.Repository
	// RecordURI aliases domain.RecordURI.
	RecordURI = domain.RecordURI
	// Scope aliases domain.Scope carried by every request.
	Scope = domain.Scope
	// Change aliases domain.Change reported per transaction.
	Change = domain.Change
	// Transaction aliases domain.Transaction.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore.
	PersistentStore = domain.PersistentStore
)

// Representation is the wire shape of a record: cleaned attributes plus the
// server-owned envelope fields (uri, lock_version, suppressed, timestamps).
type Representation = map[string]any
