// Package harness runs a fixed sequence of CRUD checks against a live store
// using sentinel records, and reports the outcome of each step.
//
// The sentinel records are left in place after Run so they can be inspected;
// call Cleanup to remove them.
package harness
