package domain

import "errors"

var (
	ErrStudentNotFound       = errors.New("student not found")
	ErrCompanyNotFound       = errors.New("company not found")
	ErrOpeningNotFound       = errors.New("opening not found")
	ErrApplicationNotFound   = errors.New("application not found")
	ErrClarificationNotFound = errors.New("clarification not found")
	ErrInterviewNotFound     = errors.New("interview slot not found")

	// ErrOpeningClosed: the opening is unpublished or past its deadline.
	ErrOpeningClosed = errors.New("opening is closed")
	// ErrNotSubscribed: the student has no subscription to the opening's company.
	ErrNotSubscribed = errors.New("not subscribed to company")
	// ErrAlreadyApplied: the student already holds an application for this opening.
	ErrAlreadyApplied = errors.New("already applied to opening")
	// ErrRejectionLocked: a prior application to this company was rejected.
	ErrRejectionLocked = errors.New("prior application to company was rejected")
	// ErrStageConflict: the compare-and-swap stage update lost to a concurrent writer.
	ErrStageConflict = errors.New("application stage changed concurrently")
	// ErrForbiddenTransition: the (role, from, to) combination is not authorized.
	ErrForbiddenTransition = errors.New("stage transition not authorized for role")
	// ErrNotOwner: the caller does not own the entity it is mutating.
	ErrNotOwner = errors.New("entity belongs to another party")
	// ErrNoPendingRequest: responding requires an unanswered clarification request.
	ErrNoPendingRequest = errors.New("no pending clarification request")
	// ErrEssayLocked: essay fields are editable only while the stage is applied.
	ErrEssayLocked = errors.New("essay editable only while applied")
	// ErrWrongRole: the operation is not available to the caller's role.
	ErrWrongRole = errors.New("operation not available for role")
)
