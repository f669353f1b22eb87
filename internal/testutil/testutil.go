// Package testutil provides testing utilities for Intcode tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Well-known programs shared across package tests.
const (
	// Quine prints its own sixteen words, exercising relative mode and growth.
	Quine = "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"

	// Echo reads one value and writes it back.
	Echo = "3,0,4,0,99"

	// EqualsEight outputs 1 if its input is 8, else 0 (position mode).
	EqualsEight = "3,9,8,9,10,9,4,9,99,-1,8"

	// LessThanEight outputs 1 if its input is below 8, else 0 (immediate mode).
	LessThanEight = "3,3,1107,-1,8,3,4,3,99"

	// Compare8 outputs 999, 1000 or 1001 for input below, equal to or above 8.
	Compare8 = "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31," +
		"1106,0,36,98,0,0,1002,21,125,20,4,20,1105,1,46,104," +
		"999,1105,1,46,1101,1000,1,20,4,20,1105,1,46,98,99"

	// Accumulate reads values until it reads 0 and then outputs their sum.
	Accumulate = "3,17,1006,17,12,1,17,18,18,1105,1,0,4,18,99,0,0,0,0"

	// Amplifier is a feedback-loop amplifier with phase settings 9,8,7,6,5
	// producing 139629729.
	Amplifier = "3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26," +
		"27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5"

	// Hello prints "Hi\n" as ASCII then halts.
	Hello = "104,72,104,105,104,10,99"
)

// TempFile creates a temporary file with the given content and extension.
// The file is automatically cleaned up when the test finishes.
func TempFile(t *testing.T, content, ext string) string {
	t.Helper()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test"+ext)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

// AssertInt64s checks that two int64 slices hold the same values in order.
func AssertInt64s(t *testing.T, expected, actual []int64) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("expected %d values %v, got %d values %v", len(expected), expected, len(actual), actual)
	}
	for i := range expected {
		if expected[i] != actual[i] {
			t.Errorf("index %d: expected %d, got %d (full: %v)", i, expected[i], actual[i], actual)
		}
	}
}

// AssertInt64Equal checks if two int64 values are equal.
func AssertInt64Equal(t *testing.T, expected, actual int64) {
	t.Helper()
	if expected != actual {
		t.Errorf("expected %d, got %d", expected, actual)
	}
}
