// Package aassert has assertions that go beyond what testify/assert offers.
// They follow the conventions of testify: they report to t and return if they passed.
package aassert
