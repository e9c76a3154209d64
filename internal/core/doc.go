// Package core provides the business logic for client record imports.
//
// This package is the heart of the importer, containing all domain logic
// independent of any UI or transport layer. It can be used by web handlers,
// CLI tools, or tests without modification.
//
// # Architecture
//
// The package is organized around a few key concepts:
//
//   - Operations: registered via the registry, each import operation
//     (create, update) declares its recognized columns and validation specs.
//   - Applier: the collaborator that validates and persists one record.
//     The store package provides the real implementation; tests provide fakes.
//   - Runner: submits each mapped record to the applier, sequentially or
//     with a bounded worker pool, and gathers per-row outcomes.
//
// # Operation Registry
//
// Operations are registered at init time using [Register]. Each
// [OperationDefinition] contains everything needed to process one kind of
// import:
//
//	core.Register(OperationDefinition{
//	    Key:   "create",
//	    Label: "Create clients",
//	    Specs: []FieldSpec{
//	        {Name: "name", Required: true, Type: FieldText},
//	        {Name: "email", Type: FieldText},
//	    },
//	})
//
// # Batch Runs
//
// A run takes the records mapped from one parsed file plus a mode. Preview
// mode reports would-be changes without touching the store; commit mode
// applies each row independently. One failing row never stops the batch or
// rolls back its neighbours, and Results[i] always corresponds to input
// record i regardless of worker count.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB004: database errors (duplicates, constraints, connections)
//   - VAL001-VAL006: validation errors (formats, missing fields, lookups)
//   - FILE001-FILE003: file errors (size, missing, empty)
//   - IMP001-IMP005: import run errors (concurrency, modes, timeouts)
package core
