package domain

import "errors"

var (
	// ErrPoolEmpty is returned when a purchase resolves to no questions at all.
	ErrPoolEmpty = errors.New("question pool is empty")
	// ErrPurchaseNotFound indicates the purchase reference is unknown.
	ErrPurchaseNotFound = errors.New("purchase not found")
	// ErrCategoryNotFound indicates a category ID has no backing record.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrSessionNotFound is returned when acting on a session that was never started.
	ErrSessionNotFound = errors.New("session not found")
)
