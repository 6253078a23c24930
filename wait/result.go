// Copyright (c) 2019-2022 Wibowo Arindrarto <contact@arindrarto.dev>
// SPDX-License-Identifier: BSD-3-Clause

package wait

// Status enumerates possible waiting status.
type Status int

const (
	Waiting Status = iota
	Ready
	TimedOut
	Failed
)

func (s Status) String() string {
	return [...]string{"waiting", "ready", "timeout", "failed"}[s]
}

// Result is the single outcome of one wait operation. Value is only meaningful when Status is
// Ready, and Err only when Status is Failed. A timeout is a normal outcome, not an error.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

// ok reports whether the wait was satisfied.
func (r Result[T]) ok() bool {
	return r.Status == Ready
}
