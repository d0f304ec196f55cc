// Package testutil holds fixtures shared by package tests: the level
// files under testdata/levels, sessions built from them, and scratch
// journals.
package testutil
