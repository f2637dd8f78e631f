// Package core provides enrollment of children into camp sessions and the
// bulk import of children from Excel workbooks.
//
// This package holds all domain logic independent of any transport or
// database. It is used by the web handlers, the campctl CLI, and tests
// through the [Store] interface.
//
// # Children and Memberships
//
// A child record is shared by every session it is enrolled in. Two requests
// describe the same child when surname, given name, sex and birth date are
// all equal (exact, case-sensitive match). A child exists exactly as long as
// it has at least one membership: every operation that removes a membership
// deletes the child it orphans, inside the same transaction.
//
// The ledger operations are:
//
//   - [Service.Enroll] creates or reuses a child and adds the membership
//   - [Service.UpdateMembership] edits a child, or moves the membership to
//     another existing child when the new identity matches one
//   - [Service.RemoveMembership] and [Service.RemoveAllMemberships]
//   - [Service.ListMemberships]
//
// # Spreadsheet Import
//
// [Service.ImportChildren] reads the first sheet of a workbook. Header cells
// are matched to fields by keyword after folding accents, case and spaces
// (see [DetectColumns]). Each data row is parsed and enrolled on its own;
// a bad row adds a message to the [ImportReport] and the import goes on.
//
// # Errors
//
// Failures carry an [ErrorKind] (see [KindOf]) so callers can map them to a
// response without inspecting messages.
package core
