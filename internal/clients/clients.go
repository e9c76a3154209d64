// Package clients registers the client import operations with the core
// registry. Import this package to make the operations available.
package clients

import (
	"github.com/JonMunkholm/clientimport/internal/core"
)

func init() {
	registerCreate()
	registerUpdate()
}

func registerCreate() {
	core.Register(core.OperationDefinition{
		Key:   "create",
		Label: "Create clients",
		Specs: []core.FieldSpec{
			{Name: "name", Column: "name", Type: core.FieldText, Required: true, Normalizer: NormalizeName, Example: "Acme Corporation"},
			{Name: "email", Column: "email", Type: core.FieldText, Normalizer: NormalizeEmail, Example: "billing@acme.example"},
			{Name: "phone", Column: "phone", Type: core.FieldText, Normalizer: NormalizePhone, Example: "+1 555-0100"},
			{Name: "address", Column: "address", Type: core.FieldText, Example: "100 Main St, Springfield"},
			{Name: "plan_id", Column: "plan_id", Type: core.FieldInt, Example: "3"},
			{Name: "active", Column: "active", Type: core.FieldBool, Example: "true"},
			{Name: "notes", Column: "notes", Type: core.FieldText, Example: "Migrated from legacy CRM"},
		},
	})
}

func registerUpdate() {
	core.Register(core.OperationDefinition{
		Key:      "update",
		Label:    "Update clients",
		KeyField: "client_id",
		Specs: []core.FieldSpec{
			{Name: "client_id", Column: "id", Type: core.FieldUUID, Required: true, Example: "0c0e2f4a-9d1b-4c6f-8a3e-5b7d9e1f2a3b"},
			{Name: "name", Column: "name", Type: core.FieldText, Normalizer: NormalizeName, Example: "Acme Corporation"},
			{Name: "email", Column: "email", Type: core.FieldText, Normalizer: NormalizeEmail, Example: "billing@acme.example"},
			{Name: "phone", Column: "phone", Type: core.FieldText, Normalizer: NormalizePhone, Example: "+1 555-0100"},
			{Name: "address", Column: "address", Type: core.FieldText, Example: "100 Main St, Springfield"},
			{Name: "plan_id", Column: "plan_id", Type: core.FieldInt, Example: "3"},
			{Name: "active", Column: "active", Type: core.FieldBool, Example: "false"},
			{Name: "notes", Column: "notes", Type: core.FieldText, Example: "Plan downgraded at renewal"},
		},
	})
}
