// Copyright (c) 2024 The cpp-py-shmbuf Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package shmbuf implements a zero-copy, lock-free, single-producer
// single-consumer byte channel between two processes on the same host,
// carried over a named shared-memory region.
//
// The wire format is fixed and language-agnostic: a 16-byte header
// (head, tail, capacity, reserved, each a little-endian uint32) followed
// by a power-of-two data area holding a sequence of [length][payload]
// frames. Any other implementation honouring that layout and the
// acquire/release ordering below can read and write the same region.
//
// Concurrency discipline is strict SPSC: exactly one goroutine (or
// process) may call Producer methods, and exactly one may call Consumer
// methods, for a given region. The roles are split by construction
// (Producer writes only head, Consumer writes only tail), but the package
// neither enforces nor detects the one-caller-per-side rule — two writers
// racing on head is undefined behaviour, same as
// in the wire protocol it implements. There is no internal locking and
// no spawned goroutines; every call is synchronous and returns in
// bounded time. The ordering contract rests entirely on sync/atomic's
// load/store operations on the shared header words, which the Go memory
// model guarantees behave as a synchronization point between the
// goroutine that stores and the goroutine that later loads the same
// value — exactly the acquire/release pairing the protocol needs.
package shmbuf

// vim: foldmethod=marker
