// Package queue provides a generic ordered collection used for waiting tasks
// and worker membership sets.
//
// Queue is not safe for concurrent use; callers guard it with their own lock.
package queue

import "iter"

// node is one element of the doubly-linked list.
type node[T any] struct {
	value      T
	prev, next *node[T]
}

// Queue is an ordered mutable collection supporting append, insert-at-front,
// removal by predicate, first/last access, and forward iteration.
// The zero value is an empty queue ready to use.
type Queue[T any] struct {
	head, tail *node[T]
	size       int
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Len returns the number of elements.
func (q *Queue[T]) Len() int {
	return q.size
}

// IsEmpty reports whether the queue has no elements.
func (q *Queue[T]) IsEmpty() bool {
	return q.size == 0
}

// PushBack appends v at the tail.
func (q *Queue[T]) PushBack(v T) {
	n := &node[T]{value: v, prev: q.tail}
	if q.tail == nil {
		q.head = n
	} else {
		q.tail.next = n
	}
	q.tail = n
	q.size++
}

// PushFront inserts v at the head.
func (q *Queue[T]) PushFront(v T) {
	n := &node[T]{value: v, next: q.head}
	if q.head == nil {
		q.tail = n
	} else {
		q.head.prev = n
	}
	q.head = n
	q.size++
}

// Front returns the first element, or false when the queue is empty.
func (q *Queue[T]) Front() (T, bool) {
	if q.head == nil {
		var zero T
		return zero, false
	}
	return q.head.value, true
}

// Back returns the last element, or false when the queue is empty.
func (q *Queue[T]) Back() (T, bool) {
	if q.tail == nil {
		var zero T
		return zero, false
	}
	return q.tail.value, true
}

// PopFront removes and returns the first element.
func (q *Queue[T]) PopFront() (T, bool) {
	if q.head == nil {
		var zero T
		return zero, false
	}
	n := q.head
	q.unlink(n)
	return n.value, true
}

// Remove deletes every element matching pred and returns how many were removed.
func (q *Queue[T]) Remove(pred func(T) bool) int {
	removed := 0
	for n := q.head; n != nil; {
		next := n.next
		if pred(n.value) {
			q.unlink(n)
			removed++
		}
		n = next
	}
	return removed
}

// Contains reports whether any element matches pred.
func (q *Queue[T]) Contains(pred func(T) bool) bool {
	for n := q.head; n != nil; n = n.next {
		if pred(n.value) {
			return true
		}
	}
	return false
}

// Find returns the first element matching pred.
func (q *Queue[T]) Find(pred func(T) bool) (T, bool) {
	for n := q.head; n != nil; n = n.next {
		if pred(n.value) {
			return n.value, true
		}
	}
	var zero T
	return zero, false
}

// All iterates the elements front to back.
// Removing the element currently yielded is allowed; other mutations during
// iteration are not.
func (q *Queue[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := q.head; n != nil; {
			next := n.next
			if !yield(n.value) {
				return
			}
			n = next
		}
	}
}

// Slice copies the elements front to back.
func (q *Queue[T]) Slice() []T {
	out := make([]T, 0, q.size)
	for n := q.head; n != nil; n = n.next {
		out = append(out, n.value)
	}
	return out
}

// Clear removes every element.
func (q *Queue[T]) Clear() {
	q.head, q.tail, q.size = nil, nil, 0
}

func (q *Queue[T]) unlink(n *node[T]) {
	if n.prev == nil {
		q.head = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next == nil {
		q.tail = n.prev
	} else {
		n.next.prev = n.prev
	}
	n.prev, n.next = nil, nil
	q.size--
}
